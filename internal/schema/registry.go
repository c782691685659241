package schema

import "strings"

// Categories used by the built-in catalog.
const (
	CategoryPerson   = "Person"
	CategoryInternet = "Internet"
	CategoryLocation = "Location"
	CategoryBusiness = "Business"
	CategoryNumeric  = "Numeric"
	CategoryMisc     = "Misc"
	CategoryDateTime = "Date/Time"
	CategoryFinance  = "Finance"
	CategoryText     = "Text"
	CategoryCustom   = "Custom"
)

var builtinTypes = []FieldTypeDescriptor{
	{ID: "first_name", DisplayName: "First Name", Category: CategoryPerson},
	{ID: "last_name", DisplayName: "Last Name", Category: CategoryPerson},
	{ID: "full_name", DisplayName: "Full Name", Category: CategoryPerson},
	{ID: "email", DisplayName: "Email", Category: CategoryInternet},
	{ID: "phone", DisplayName: "Phone", Category: CategoryPerson},
	{ID: "address", DisplayName: "Address", Category: CategoryLocation},
	{ID: "city", DisplayName: "City", Category: CategoryLocation},
	{ID: "state", DisplayName: "State", Category: CategoryLocation},
	{ID: "country", DisplayName: "Country", Category: CategoryLocation},
	{ID: "zip_code", DisplayName: "Zip Code", Category: CategoryLocation},
	{ID: "company", DisplayName: "Company", Category: CategoryBusiness},
	{ID: "job_title", DisplayName: "Job Title", Category: CategoryBusiness},
	{ID: "number", DisplayName: "Number", Category: CategoryNumeric, HasOptions: true},
	{ID: "decimal", DisplayName: "Decimal", Category: CategoryNumeric, HasOptions: true},
	{ID: "boolean", DisplayName: "Boolean", Category: CategoryMisc},
	{ID: "date", DisplayName: "Date", Category: CategoryDateTime},
	{ID: "datetime", DisplayName: "Date Time", Category: CategoryDateTime},
	{ID: "uuid", DisplayName: "UUID", Category: CategoryMisc},
	{ID: "username", DisplayName: "Username", Category: CategoryInternet},
	{ID: "password", DisplayName: "Password", Category: CategoryInternet},
	{ID: "url", DisplayName: "URL", Category: CategoryInternet},
	{ID: "ip_address", DisplayName: "IP Address", Category: CategoryInternet},
	{ID: "credit_card", DisplayName: "Credit Card", Category: CategoryFinance},
	{ID: "color", DisplayName: "Color", Category: CategoryMisc},
	{ID: "lorem_ipsum", DisplayName: "Lorem Ipsum", Category: CategoryText, HasOptions: true},
	{ID: "custom_list", DisplayName: "Custom List", Category: CategoryCustom, HasOptions: true},
}

var builtinIndex = func() map[string]FieldTypeDescriptor {
	idx := make(map[string]FieldTypeDescriptor, len(builtinTypes))
	for _, t := range builtinTypes {
		idx[t.ID] = t
	}
	return idx
}()

// BuiltinTypes returns a copy of the static type catalog.
func BuiltinTypes() []FieldTypeDescriptor {
	return append([]FieldTypeDescriptor(nil), builtinTypes...)
}

// Lookup finds a built-in type by id.
func Lookup(id string) (FieldTypeDescriptor, bool) {
	t, ok := builtinIndex[id]
	return t, ok
}

// Label returns the display name of a type with spaces removed ("First Name" -> "FirstName").
func (t FieldTypeDescriptor) Label() string {
	return strings.ReplaceAll(t.DisplayName, " ", "")
}

// Categories returns the distinct categories of types in first-appearance order.
func Categories(types []FieldTypeDescriptor) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range types {
		if seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	return out
}

// ByCategory returns the types of one category, keeping catalog order.
func ByCategory(types []FieldTypeDescriptor, category string) []FieldTypeDescriptor {
	var out []FieldTypeDescriptor
	for _, t := range types {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}
