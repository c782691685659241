package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Sergiu-D/dataforge/internal/codec"
	"github.com/Sergiu-D/dataforge/internal/schema"
)

// Reference is the always-available fallback generator. Its output depends only on
// the schema and the row index, so identical input yields byte-identical CSV.
type Reference struct{}

func (Reference) Generate(ctx context.Context, s schema.Schema) (string, error) {
	progress := progressFrom(ctx)
	header := s.Header()

	rows := make([][]string, 0, max(s.Rows, 0))
	for i := 0; i < s.Rows; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}

		rng := rand.New(rand.NewSource(int64(i + 1)))
		row := make([]string, len(s.Fields))
		for j, f := range s.Fields {
			row[j] = referenceValue(rng, f, i)
		}
		rows = append(rows, row)

		if (i+1)%100 == 0 || i+1 == s.Rows {
			progress(i+1, s.Rows)
		}
	}

	return codec.Encode(header, rows), nil
}

func referenceValue(rng *rand.Rand, f schema.Field, i int) string {
	switch f.TypeID {
	case "email":
		return fmt.Sprintf("user%d@example.com", i+1)
	case "number":
		// [0, 100) when no bounds are given
		lo, hi := 0, 99
		if r, ok := f.Options.(schema.RangeOptions); ok {
			lo, hi = r.IntBounds(0, 99)
		}
		if hi < lo {
			return fmt.Sprint(lo)
		}
		return fmt.Sprint(lo + rng.Intn(hi-lo+1))
	}

	if t, ok := schema.Lookup(f.TypeID); ok {
		switch t.Category {
		case schema.CategoryPerson, schema.CategoryLocation, schema.CategoryBusiness:
			return fmt.Sprintf("%s%d", t.Label(), i+1)
		}
	}
	return fmt.Sprintf("Value%d", i+1)
}
