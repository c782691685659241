package engine_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/schema"
)

type fakeModule struct {
	types    string
	typesErr error
	generate func(ctx context.Context, payload []byte) ([]byte, error)
}

func (m *fakeModule) GenerateData(ctx context.Context, payload []byte) ([]byte, error) {
	return m.generate(ctx, payload)
}

func (m *fakeModule) AvailableTypes(context.Context) ([]byte, error) {
	return []byte(m.types), m.typesErr
}

func moduleLoader(m engine.Module) engine.Loader {
	return engine.LoaderFunc(func(context.Context) (engine.Module, error) { return m, nil })
}

var uuidSchema = schema.Schema{Fields: []schema.Field{{ID: "1", Name: "id", TypeID: "uuid"}}, Rows: 3}

func mustReference(t *testing.T, s schema.Schema) string {
	t.Helper()
	out, err := engine.Reference{}.Generate(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSelectorBuiltinUUIDScenario(t *testing.T) {
	loader, err := engine.NewLoader(engine.Config{Provider: engine.ProviderBuiltin}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sel := engine.NewSelector(loader)
	if sel.State() != engine.Uninitialized {
		t.Fatalf("State() = %v before first use, want uninitialized", sel.State())
	}

	out, err := sel.Generate(context.Background(), uuidSchema)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if sel.State() != engine.Ready {
		t.Errorf("State() = %v, want ready", sel.State())
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	if lines[0] != "id" {
		t.Errorf("header = %q, want id", lines[0])
	}
	if strings.HasPrefix(lines[1], "Value") {
		t.Errorf("row %q came from the reference generator", lines[1])
	}
}

func TestSelectorFailedUsesReference(t *testing.T) {
	loader, err := engine.NewLoader(engine.Config{Provider: engine.ProviderNone}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sel := engine.NewSelector(loader)

	first, err := sel.Generate(context.Background(), uuidSchema)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if sel.State() != engine.Failed {
		t.Errorf("State() = %v, want failed", sel.State())
	}
	second, err := sel.Generate(context.Background(), uuidSchema)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if first == "" || first != second {
		t.Errorf("failed selector output not deterministic: %q vs %q", first, second)
	}
	if want := mustReference(t, uuidSchema); first != want {
		t.Errorf("Generate() = %q, want reference output %q", first, want)
	}
}

func TestSelectorFailedWarnsOnEveryGeneration(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	loader, err := engine.NewLoader(engine.Config{Provider: engine.ProviderNone}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sel := engine.NewSelector(loader, engine.WithLogger(zap.New(core).Sugar()))

	for i := 0; i < 3; i++ {
		if _, err := sel.Generate(context.Background(), uuidSchema); err != nil {
			t.Fatalf("Generate error: %v", err)
		}
	}

	// one from the failed probe, one per generation
	if got := logs.FilterMessage("pluggable engine unavailable, using reference generator").Len(); got != 4 {
		t.Errorf("got %d fallback warnings, want 4", got)
	}
}

func TestSelectorFallsBackOnBadModule(t *testing.T) {
	s := schema.Schema{
		Fields: []schema.Field{{ID: "1", Name: "a", TypeID: "city"}, {ID: "2", Name: "b", TypeID: "email"}},
		Rows:   2,
	}

	tests := []struct {
		name     string
		generate func(context.Context, []byte) ([]byte, error)
	}{
		{"error", func(context.Context, []byte) ([]byte, error) { return nil, errors.New("boom") }},
		{"panic", func(context.Context, []byte) ([]byte, error) { panic("kaboom") }},
		{"empty", func(context.Context, []byte) ([]byte, error) { return []byte("  "), nil }},
		{"short", func(context.Context, []byte) ([]byte, error) { return []byte("a,b\nx,y"), nil }},
		{"narrow header", func(context.Context, []byte) ([]byte, error) { return []byte("a\nx\ny"), nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := engine.NewSelector(moduleLoader(&fakeModule{types: `[{"id":"city"}]`, generate: tt.generate}))
			out, err := sel.Generate(context.Background(), s)
			if err != nil {
				t.Fatalf("Generate error: %v", err)
			}
			if want := mustReference(t, s); out != want {
				t.Errorf("Generate() = %q, want reference output %q", out, want)
			}
			if sel.State() != engine.Ready {
				t.Errorf("State() = %v, want ready", sel.State())
			}
		})
	}
}

func TestSelectorReturnsModuleOutputVerbatim(t *testing.T) {
	want := "id\n\"x, 1\"\ny\nz"
	var payload string
	sel := engine.NewSelector(moduleLoader(&fakeModule{
		types: `[{"id":"uuid","name":"UUID","category":"Misc"}]`,
		generate: func(_ context.Context, p []byte) ([]byte, error) {
			payload = string(p)
			return []byte(want), nil
		},
	}))

	got, err := sel.Generate(context.Background(), uuidSchema)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
	if !strings.Contains(payload, `"rows":3`) || !strings.Contains(payload, `"type":"uuid"`) {
		t.Errorf("unexpected payload %s", payload)
	}
}

func TestSelectorProbeFailures(t *testing.T) {
	tests := []struct {
		name   string
		loader engine.Loader
	}{
		{"load error", engine.LoaderFunc(func(context.Context) (engine.Module, error) { return nil, errors.New("missing") })},
		{"load panic", engine.LoaderFunc(func(context.Context) (engine.Module, error) { panic("bad plugin") })},
		{"nil module", moduleLoader(nil)},
		{"probe error", moduleLoader(&fakeModule{typesErr: errors.New("no types")})},
		{"probe garbage", moduleLoader(&fakeModule{types: "<html>"})},
		{"probe empty", moduleLoader(&fakeModule{types: "[]"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := engine.NewSelector(tt.loader)
			if got := sel.Init(context.Background()); got != engine.Failed {
				t.Errorf("Init() = %v, want failed", got)
			}
			types, err := sel.ListTypes(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(types) != len(schema.BuiltinTypes()) {
				t.Errorf("ListTypes() returned %d types, want the built-in catalog", len(types))
			}
		})
	}
}

func TestSelectorListTypesFromModule(t *testing.T) {
	sel := engine.NewSelector(moduleLoader(&fakeModule{types: `[{"id":"ssn","name":"SSN","category":"Person"}]`}))
	types, err := sel.ListTypes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 1 || types[0].ID != "ssn" {
		t.Errorf("ListTypes() = %+v, want the module catalog only", types)
	}
}

func TestSelectorInitializesOnce(t *testing.T) {
	var loads atomic.Int32
	sel := engine.NewSelector(engine.LoaderFunc(func(context.Context) (engine.Module, error) {
		loads.Add(1)
		return nil, errors.New("unavailable")
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sel.Generate(context.Background(), uuidSchema); err != nil {
				t.Errorf("Generate error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, schema.Schema) (string, error) {
	return "", errors.New("reference broke")
}

func TestSelectorTotalFailure(t *testing.T) {
	loader, _ := engine.NewLoader(engine.Config{Provider: engine.ProviderNone}, nil)
	sel := engine.NewSelector(loader, engine.WithReference(failingGenerator{}))

	if _, err := sel.Generate(context.Background(), uuidSchema); !errors.Is(err, engine.ErrGenerationFailed) {
		t.Errorf("Generate error = %v, want ErrGenerationFailed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.NewSelector(loader).Generate(ctx, uuidSchema)
	if !errors.Is(err, engine.ErrGenerationFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("Generate error = %v, want ErrGenerationFailed wrapping context.Canceled", err)
	}
}

func TestNewLoaderRejectsUnknownProvider(t *testing.T) {
	if _, err := engine.NewLoader(engine.Config{Provider: "wasm"}, nil); err == nil {
		t.Error("NewLoader(wasm) returned no error")
	}
	if _, err := engine.NewLoader(engine.Config{Provider: engine.ProviderPlugin}, nil); err == nil {
		t.Error("NewLoader(plugin) without a path returned no error")
	}
}

func TestStateString(t *testing.T) {
	for st, want := range map[engine.State]string{
		engine.Uninitialized: "uninitialized",
		engine.Initializing:  "initializing",
		engine.Ready:         "ready",
		engine.Failed:        "failed",
	} {
		if st.String() != want {
			t.Errorf("%d.String() = %q, want %q", int32(st), st.String(), want)
		}
	}
}
