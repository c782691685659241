// Package engine turns a schema into CSV row data.
//
// A Selector prefers a pluggable Module (the built-in gofakeit module or a Go plugin)
// and falls back to the deterministic Reference generator when the module is missing,
// fails, or answers with malformed data.
package engine

import (
	"context"

	"github.com/Sergiu-D/dataforge/internal/schema"
)

// Module is the narrow byte-in/byte-out boundary of a pluggable engine.
//
// GenerateData takes a JSON exchange payload ({"fields": [...], "rows": N}) and returns
// CSV text with the header first. AvailableTypes returns a JSON array of type descriptors.
type Module interface {
	GenerateData(ctx context.Context, payload []byte) ([]byte, error)
	AvailableTypes(ctx context.Context) ([]byte, error)
}

// Generator produces a CSV dataset for a schema.
type Generator interface {
	Generate(ctx context.Context, s schema.Schema) (string, error)
}

// Loader provides the pluggable Module. Load is called at most once per Selector.
type Loader interface {
	Load(ctx context.Context) (Module, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Module, error)

func (f LoaderFunc) Load(ctx context.Context) (Module, error) { return f(ctx) }
