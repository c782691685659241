package schema

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by MoveField for positions outside the field list.
var ErrIndexOutOfRange = errors.New("field index out of range")

// ErrFieldNotFound is returned when an edit references an unknown field id.
var ErrFieldNotFound = errors.New("field not found")

// NewField appends a blank field named after its position and returns the new list.
func NewField(fields []Field) []Field {
	f := Field{
		ID:      NewID(),
		Name:    fmt.Sprintf("field_%d", len(fields)+1),
		Options: NoOptions{},
	}
	return append(append([]Field(nil), fields...), f)
}

// RemoveField drops the field with the given id.
func RemoveField(fields []Field, id string) ([]Field, error) {
	out := make([]Field, 0, len(fields))
	found := false
	for _, f := range fields {
		if f.ID == id {
			found = true
			continue
		}
		out = append(out, f)
	}
	if !found {
		return fields, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	return out, nil
}

// ReplaceField swaps in updated, matched by id.
func ReplaceField(fields []Field, updated Field) ([]Field, error) {
	out := append([]Field(nil), fields...)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
			return out, nil
		}
	}
	return fields, fmt.Errorf("%w: %s", ErrFieldNotFound, updated.ID)
}

// SetType changes a field's type and validates raw options against it.
func SetType(f Field, typeID string, raw map[string]any) (Field, error) {
	opts, err := ParseOptions(typeID, raw)
	if err != nil {
		return f, fmt.Errorf("field %q: %w", f.Name, err)
	}
	f.TypeID = typeID
	f.Options = opts
	return f, nil
}

// MoveField returns a copy of fields with the element at from moved to to.
// Every other element keeps its relative order.
func MoveField(fields []Field, from, to int) ([]Field, error) {
	n := len(fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fields, fmt.Errorf("%w: move %d -> %d with %d fields", ErrIndexOutOfRange, from, to, n)
	}

	out := make([]Field, 0, n)
	moved := fields[from]
	for i, f := range fields {
		if i == from {
			continue
		}
		out = append(out, f)
	}
	out = append(out[:to], append([]Field{moved}, out[to:]...)...)
	return out, nil
}
