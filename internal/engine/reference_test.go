package engine_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Sergiu-D/dataforge/internal/codec"
	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/schema"
)

func rangeOpts(lo, hi float64) schema.RangeOptions {
	return schema.RangeOptions{Min: &lo, Max: &hi}
}

func TestReferenceValues(t *testing.T) {
	s := schema.Schema{
		Fields: []schema.Field{
			{Name: "first", TypeID: "first_name"},
			{Name: "zip", TypeID: "zip_code"},
			{Name: "job", TypeID: "job_title"},
			{Name: "mail", TypeID: "email"},
			{Name: "id", TypeID: "uuid"},
			{Name: "mystery", TypeID: "not_a_type"},
			{Name: "unset"},
		},
		Rows: 7,
	}

	out, err := engine.Reference{}.Generate(context.Background(), s)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	header, rows := codec.Decode(out)
	if diff := cmp.Diff(s.Header(), header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	want := []string{"FirstName7", "ZipCode7", "JobTitle7", "user7@example.com", "Value7", "Value7", "Value7"}
	if diff := cmp.Diff(want, rows[6]); diff != "" {
		t.Errorf("row 7 mismatch (-want +got):\n%s", diff)
	}
}

func TestReferenceShape(t *testing.T) {
	s := schema.Schema{
		Fields: []schema.Field{{Name: "a", TypeID: "city"}, {Name: "b", TypeID: "number"}},
		Rows:   50,
	}
	out, err := engine.Reference{}.Generate(context.Background(), s)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 51 {
		t.Fatalf("got %d lines, want 51", len(lines))
	}
	for i, line := range lines {
		if n := len(strings.Split(line, ",")); n != 2 {
			t.Errorf("line %d has %d cells, want 2", i+1, n)
		}
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("output has a trailing newline")
	}
}

func TestReferenceIsDeterministic(t *testing.T) {
	s := schema.Schema{
		Fields: []schema.Field{
			{Name: "n", TypeID: "number", Options: rangeOpts(-5, 5)},
			{Name: "m", TypeID: "number"},
			{Name: "e", TypeID: "email"},
		},
		Rows: 200,
	}

	first, err := engine.Reference{}.Generate(context.Background(), s)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	second, err := engine.Reference{}.Generate(context.Background(), s.Snapshot())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if first != second {
		t.Error("two runs over the same schema produced different output")
	}
}

var lowestBound = -float64(schema.MaxRangeMagnitude)

func TestReferenceNumberRange(t *testing.T) {
	tests := []struct {
		name   string
		opts   schema.Options
		lo, hi int
	}{
		{"default", schema.RangeOptions{}, 0, 99},
		{"explicit", rangeOpts(10, 12), 10, 12},
		{"fractional bounds", rangeOpts(0.5, 3.5), 1, 3},
		{"single value", rangeOpts(7, 7), 7, 7},
		{"widest accepted", rangeOpts(-schema.MaxRangeMagnitude, schema.MaxRangeMagnitude), -schema.MaxRangeMagnitude, schema.MaxRangeMagnitude},
		{"open max with low min", schema.RangeOptions{Min: &lowestBound}, -schema.MaxRangeMagnitude, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schema.Schema{Fields: []schema.Field{{Name: "n", TypeID: "number", Options: tt.opts}}, Rows: 300}
			out, err := engine.Reference{}.Generate(context.Background(), s)
			if err != nil {
				t.Fatalf("Generate error: %v", err)
			}
			_, rows := codec.Decode(out)
			for i, row := range rows {
				v, err := strconv.Atoi(row[0])
				if err != nil {
					t.Fatalf("row %d: %q is not an integer", i+1, row[0])
				}
				if v < tt.lo || v > tt.hi {
					t.Errorf("row %d: %d outside [%d, %d]", i+1, v, tt.lo, tt.hi)
				}
			}
		})
	}
}

func TestReferenceHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := schema.Schema{Fields: []schema.Field{{Name: "a", TypeID: "city"}}, Rows: 5}
	if _, err := (engine.Reference{}).Generate(ctx, s); err == nil {
		t.Error("Generate with a cancelled context returned no error")
	}
}
