package engine

import (
	"context"
	"fmt"
	"plugin"
)

// Symbols a plugin must export.
const (
	symGenerateData   = "GenerateData"
	symAvailableTypes = "AvailableTypes"
)

type pluginModule struct {
	generate func(context.Context, []byte) ([]byte, error)
	types    func(context.Context) ([]byte, error)
}

func (m *pluginModule) GenerateData(ctx context.Context, payload []byte) ([]byte, error) {
	return m.generate(ctx, payload)
}

func (m *pluginModule) AvailableTypes(ctx context.Context) ([]byte, error) {
	return m.types(ctx)
}

// OpenPlugin loads a Go plugin exporting
//
//	func GenerateData(ctx context.Context, payload []byte) ([]byte, error)
//	func AvailableTypes(ctx context.Context) ([]byte, error)
func OpenPlugin(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin %s: %w", path, err)
	}

	gen, err := p.Lookup(symGenerateData)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", path, err)
	}
	types, err := p.Lookup(symAvailableTypes)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", path, err)
	}

	m := &pluginModule{}
	var ok bool
	if m.generate, ok = gen.(func(context.Context, []byte) ([]byte, error)); !ok {
		return nil, fmt.Errorf("plugin %s: %s has type %T", path, symGenerateData, gen)
	}
	if m.types, ok = types.(func(context.Context) ([]byte, error)); !ok {
		return nil, fmt.Errorf("plugin %s: %s has type %T", path, symAvailableTypes, types)
	}
	return m, nil
}
