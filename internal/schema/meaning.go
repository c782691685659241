package schema

import "strings"

var abbreviations = map[string]string{
	"nm": "name", "fnm": "first_name", "lnm": "last_name", "fname": "first_name", "lname": "last_name",
	"dt": "date", "ts": "datetime", "tm": "datetime", "no": "number", "num": "number",
	"cnt": "count", "qty": "quantity", "amt": "amount", "bal": "balance", "prc": "price",
	"addr": "address", "tel": "phone", "hp": "phone", "ph": "phone", "mob": "phone",
	"mail": "email", "pwd": "password", "passwd": "password", "pw": "password",
	"usr": "user", "uname": "username", "login": "username",
	"zip": "zip", "post": "zip", "postal": "zip",
	"ip": "ip", "url": "url", "uri": "url", "link": "url",
	"desc": "description", "msg": "message", "txt": "text", "cmt": "comment",
	"co": "company", "corp": "company", "org": "company", "biz": "company",
	"job": "job", "pos": "job", "cty": "city", "ctry": "country", "nat": "country",
	"prov": "state", "st": "state", "region": "state",
	"yn": "flag", "flg": "flag", "is": "flag", "has": "flag", "use": "flag",
	"uid": "uuid", "guid": "uuid",
	"clr": "color", "colour": "color", "cc": "card", "card": "card",
}

// commentHints maps comment keywords to type ids, checked before the column name.
var commentHints = []struct {
	keywords []string
	typeID   string
}{
	{[]string{"email", "e-mail"}, "email"},
	{[]string{"phone", "mobile", "telephone"}, "phone"},
	{[]string{"first name", "given name"}, "first_name"},
	{[]string{"last name", "surname", "family name"}, "last_name"},
	{[]string{"full name"}, "full_name"},
	{[]string{"address"}, "address"},
	{[]string{"postal", "zip"}, "zip_code"},
	{[]string{"password"}, "password"},
	{[]string{"country"}, "country"},
	{[]string{"city"}, "city"},
	{[]string{"company", "employer"}, "company"},
	{[]string{"description", "comment", "notes"}, "lorem_ipsum"},
	{[]string{"timestamp", "date time"}, "datetime"},
	{[]string{"date"}, "date"},
	{[]string{"flag", "yes/no", "enabled"}, "boolean"},
	{[]string{"price", "cost", "amount"}, "decimal"},
	{[]string{"count", "quantity"}, "number"},
}

// SuggestType guesses a built-in type id from a field or column name and an optional
// free-text comment. It returns "" when nothing matches.
func SuggestType(name, comment string) string {
	c := strings.ToLower(comment)
	for _, hint := range commentHints {
		for _, kw := range hint.keywords {
			if strings.Contains(c, kw) {
				return hint.typeID
			}
		}
	}

	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := Lookup(n); ok {
		return n
	}

	words := expand(n)
	has := func(w string) bool {
		for _, x := range words {
			if x == w {
				return true
			}
		}
		return false
	}

	switch {
	case has("uuid") || has("guid"):
		return "uuid"
	case has("email"):
		return "email"
	case has("first_name") || (has("first") && has("name")):
		return "first_name"
	case has("last_name") || (has("last") && has("name")):
		return "last_name"
	case has("username") || (has("user") && has("name")):
		return "username"
	case has("phone"):
		return "phone"
	case has("password"):
		return "password"
	case has("zip"):
		return "zip_code"
	case has("address"):
		return "address"
	case has("city"):
		return "city"
	case has("state"):
		return "state"
	case has("country"):
		return "country"
	case has("company"):
		return "company"
	case has("job"):
		return "job_title"
	case has("url"):
		return "url"
	case has("ip"):
		return "ip_address"
	case has("card"):
		return "credit_card"
	case has("color"):
		return "color"
	case has("flag") || has("active") || has("enabled"):
		return "boolean"
	case has("datetime") || has("created") || has("updated") || has("at"):
		return "datetime"
	case has("date") || has("birthday") || has("dob"):
		return "date"
	case has("price") || has("amount") || has("balance"):
		return "decimal"
	case has("count") || has("quantity") || has("number") || has("age"):
		return "number"
	case has("description") || has("message") || has("text") || has("comment"):
		return "lorem_ipsum"
	case has("name"):
		return "full_name"
	}
	return ""
}

// SuggestTypeForColumn extends SuggestType with a fallback on the SQL data type.
func SuggestTypeForColumn(name, comment, dataType string) string {
	if t := SuggestType(name, comment); t != "" {
		return t
	}
	dt := strings.ToLower(dataType)
	switch {
	case strings.Contains(dt, "uuid") || strings.Contains(dt, "uniqueidentifier"):
		return "uuid"
	case strings.Contains(dt, "bool") || dt == "bit":
		return "boolean"
	case strings.Contains(dt, "timestamp") || strings.Contains(dt, "datetime"):
		return "datetime"
	case strings.Contains(dt, "date"):
		return "date"
	case strings.Contains(dt, "int"):
		return "number"
	case strings.Contains(dt, "decimal") || strings.Contains(dt, "numeric") ||
		strings.Contains(dt, "float") || strings.Contains(dt, "double") || strings.Contains(dt, "real"):
		return "decimal"
	case strings.Contains(dt, "text") || strings.Contains(dt, "clob"):
		return "lorem_ipsum"
	}
	return ""
}

// expand splits a snake_case or kebab-case name and decodes known abbreviations.
func expand(name string) []string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if full, ok := abbreviations[p]; ok {
			words = append(words, full)
		} else {
			words = append(words, p)
		}
	}
	return words
}
