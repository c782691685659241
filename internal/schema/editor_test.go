package schema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Sergiu-D/dataforge/internal/schema"
)

func names(fields []schema.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func fieldsNamed(ns ...string) []schema.Field {
	out := make([]schema.Field, len(ns))
	for i, n := range ns {
		out[i] = schema.Field{ID: n, Name: n, TypeID: "city", Options: schema.NoOptions{}}
	}
	return out
}

func TestMoveField(t *testing.T) {
	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 3, []string{"b", "c", "d", "a"}},
		{3, 0, []string{"d", "a", "b", "c"}},
		{1, 2, []string{"a", "c", "b", "d"}},
		{2, 2, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		in := fieldsNamed("a", "b", "c", "d")
		got, err := schema.MoveField(in, tt.from, tt.to)
		if err != nil {
			t.Fatalf("MoveField(%d, %d) error: %v", tt.from, tt.to, err)
		}
		if diff := cmp.Diff(tt.want, names(got)); diff != "" {
			t.Errorf("MoveField(%d, %d) mismatch (-want +got):\n%s", tt.from, tt.to, diff)
		}
		if diff := cmp.Diff([]string{"a", "b", "c", "d"}, names(in)); diff != "" {
			t.Errorf("MoveField mutated its input (-want +got):\n%s", diff)
		}
	}
}

func TestMoveFieldOutOfRange(t *testing.T) {
	in := fieldsNamed("a", "b")
	for _, pair := range [][2]int{{-1, 0}, {0, 2}, {2, 0}} {
		if _, err := schema.MoveField(in, pair[0], pair[1]); !errors.Is(err, schema.ErrIndexOutOfRange) {
			t.Errorf("MoveField(%d, %d) error = %v, want ErrIndexOutOfRange", pair[0], pair[1], err)
		}
	}
}

func TestNewFieldAndRemove(t *testing.T) {
	fields := schema.NewField(nil)
	fields = schema.NewField(fields)

	if diff := cmp.Diff([]string{"field_1", "field_2"}, names(fields)); diff != "" {
		t.Fatalf("NewField names mismatch (-want +got):\n%s", diff)
	}
	if fields[0].ID == "" || fields[0].ID == fields[1].ID {
		t.Fatalf("NewField ids not unique: %q %q", fields[0].ID, fields[1].ID)
	}

	rest, err := schema.RemoveField(fields, fields[0].ID)
	if err != nil {
		t.Fatalf("RemoveField error: %v", err)
	}
	if len(rest) != 1 || rest[0].Name != "field_2" {
		t.Errorf("RemoveField left %v", names(rest))
	}

	if _, err := schema.RemoveField(rest, "missing"); !errors.Is(err, schema.ErrFieldNotFound) {
		t.Errorf("RemoveField(missing) error = %v, want ErrFieldNotFound", err)
	}
}

func TestSetTypeValidatesOptions(t *testing.T) {
	f := schema.Field{ID: "1", Name: "age"}

	f, err := schema.SetType(f, "number", map[string]any{"min": 18, "max": 90.0})
	if err != nil {
		t.Fatalf("SetType error: %v", err)
	}
	r, ok := f.Options.(schema.RangeOptions)
	if !ok {
		t.Fatalf("Options = %T, want RangeOptions", f.Options)
	}
	if lo, hi := r.IntBounds(0, 100); lo != 18 || hi != 90 {
		t.Errorf("IntBounds = %d..%d, want 18..90", lo, hi)
	}

	if _, err := schema.SetType(f, "number", map[string]any{"min": 10, "max": 1}); !errors.Is(err, schema.ErrInvalidOptions) {
		t.Errorf("SetType(min > max) error = %v, want ErrInvalidOptions", err)
	}
}

func TestReplaceField(t *testing.T) {
	fields := fieldsNamed("a", "b")
	updated := fields[1]
	updated.Name = "renamed"

	got, err := schema.ReplaceField(fields, updated)
	if err != nil {
		t.Fatalf("ReplaceField error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "renamed"}, names(got)); diff != "" {
		t.Errorf("ReplaceField mismatch (-want +got):\n%s", diff)
	}
}
