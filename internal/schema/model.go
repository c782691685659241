package schema

import "github.com/google/uuid"

// Row count bounds accepted by callers. Engines never clamp.
const (
	MinRows     = 1
	MaxRows     = 10000
	DefaultRows = 100
)

// FieldTypeDescriptor describes one semantic type a field can take.
type FieldTypeDescriptor struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Category    string `json:"category"`
	HasOptions  bool   `json:"hasOptions,omitempty"`
}

// Field is one named, typed column definition.
type Field struct {
	ID      string
	Name    string
	TypeID  string
	Options Options
}

// Schema is an ordered set of fields plus a target row count.
type Schema struct {
	Fields []Field
	Rows   int
}

// NewID returns a fresh opaque field identifier.
func NewID() string {
	return uuid.NewString()
}

// Header returns the field names in column order.
func (s Schema) Header() []string {
	header := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		header[i] = f.Name
	}
	return header
}

// Snapshot returns a copy of the schema that later edits cannot reach.
func (s Schema) Snapshot() Schema {
	fields := make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		f.Options = cloneOptions(f.Options)
		fields[i] = f
	}
	return Schema{Fields: fields, Rows: s.Rows}
}

// ClampRows forces n into [MinRows, MaxRows].
func ClampRows(n int) int {
	if n < MinRows {
		return MinRows
	}
	if n > MaxRows {
		return MaxRows
	}
	return n
}
