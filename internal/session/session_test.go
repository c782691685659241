package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/schema"
	"github.com/Sergiu-D/dataforge/internal/session"
)

type stubEngine struct {
	mu       sync.Mutex
	out      string
	err      error
	calls    int
	lastRows int
	listed   int
	block    chan struct{}
	started  chan struct{}
}

func (e *stubEngine) Generate(ctx context.Context, s schema.Schema) (string, error) {
	e.mu.Lock()
	e.calls++
	e.lastRows = s.Rows
	e.mu.Unlock()
	if e.started != nil {
		close(e.started)
	}
	if e.block != nil {
		<-e.block
	}
	return e.out, e.err
}

func (e *stubEngine) ListTypes(context.Context) ([]schema.FieldTypeDescriptor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listed++
	return schema.BuiltinTypes(), nil
}

var fields = []schema.Field{{ID: "1", Name: "email", TypeID: "email"}}

func TestGenerateStoresDataset(t *testing.T) {
	eng := &stubEngine{out: "email\na@b.c"}
	s := session.New(eng, nil)

	res, err := s.Generate(context.Background(), fields, 20000)
	require.NoError(t, err)
	assert.Equal(t, "email\na@b.c", res.Dataset)
	assert.Equal(t, schema.MaxRows, res.Rows)
	assert.Equal(t, schema.MaxRows, eng.lastRows)
	assert.Empty(t, res.Warnings)

	ds, ok := s.Dataset()
	assert.True(t, ok)
	assert.Equal(t, "email\na@b.c", ds)

	st, stErr := s.Status()
	assert.Equal(t, session.Idle, st)
	assert.NoError(t, stErr)
}

func TestGenerateRejectsEmptyFields(t *testing.T) {
	eng := &stubEngine{out: "x"}
	s := session.New(eng, nil)

	_, err := s.Generate(context.Background(), nil, 10)
	assert.ErrorIs(t, err, session.ErrNoFields)
	assert.Zero(t, eng.calls)
}

func TestGenerateReportsAdvisoryWarnings(t *testing.T) {
	eng := &stubEngine{out: "a,a\n1,2"}
	s := session.New(eng, nil)

	res, err := s.Generate(context.Background(), []schema.Field{
		{ID: "1", Name: "a", TypeID: "city"},
		{ID: "2", Name: "a"},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"field 2: type is required", `duplicate field name: "a"`}, res.Warnings)
	assert.Equal(t, 1, eng.calls)
}

func TestGenerateFailureKeepsPreviousDataset(t *testing.T) {
	eng := &stubEngine{out: "email\nfirst"}
	s := session.New(eng, nil)

	_, err := s.Generate(context.Background(), fields, 1)
	require.NoError(t, err)

	eng.err = engine.ErrGenerationFailed
	_, err = s.Generate(context.Background(), fields, 1)
	assert.ErrorIs(t, err, engine.ErrGenerationFailed)

	ds, _ := s.Dataset()
	assert.Equal(t, "email\nfirst", ds)

	st, stErr := s.Status()
	assert.Equal(t, session.Error, st)
	assert.ErrorIs(t, stErr, engine.ErrGenerationFailed)
}

func TestGenerateIsExclusive(t *testing.T) {
	eng := &stubEngine{out: "email\nx", block: make(chan struct{}), started: make(chan struct{})}
	s := session.New(eng, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), fields, 1)
		done <- err
	}()
	<-eng.started

	st, _ := s.Status()
	assert.Equal(t, session.Generating, st)

	_, err := s.Generate(context.Background(), fields, 1)
	assert.ErrorIs(t, err, session.ErrBusy)

	close(eng.block)
	require.NoError(t, <-done)
}

func TestGenerateSnapshotsFields(t *testing.T) {
	lo, hi := 1.0, 2.0
	in := []schema.Field{{ID: "1", Name: "n", TypeID: "number", Options: schema.RangeOptions{Min: &lo, Max: &hi}}}

	var seen schema.Schema
	eng := &recordingEngine{fn: func(s schema.Schema) { seen = s }}
	s := session.New(eng, nil)

	_, err := s.Generate(context.Background(), in, 3)
	require.NoError(t, err)

	lo = 99
	in[0].Name = "changed"
	assert.Equal(t, "n", seen.Fields[0].Name)
	assert.Equal(t, 1.0, *seen.Fields[0].Options.(schema.RangeOptions).Min)
}

type recordingEngine struct {
	fn func(schema.Schema)
}

func (e *recordingEngine) Generate(_ context.Context, s schema.Schema) (string, error) {
	e.fn(s)
	return "n\n1", nil
}

func (e *recordingEngine) ListTypes(context.Context) ([]schema.FieldTypeDescriptor, error) {
	return nil, errors.New("unused")
}

func TestTypesAreCached(t *testing.T) {
	eng := &stubEngine{}
	s := session.New(eng, nil)

	first, err := s.Types(context.Background())
	require.NoError(t, err)
	first[0].ID = "mutated"

	second, err := s.Types(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, eng.listed)
	assert.Equal(t, "first_name", second[0].ID)
}

func TestSessionWithSelectorFallback(t *testing.T) {
	loader, err := engine.NewLoader(engine.Config{Provider: engine.ProviderNone}, nil)
	require.NoError(t, err)
	s := session.New(engine.NewSelector(loader), nil)

	res, err := s.Generate(context.Background(), []schema.Field{{ID: "1", Name: "id", TypeID: "uuid"}}, 3)
	require.NoError(t, err)
	assert.Equal(t, "id\nValue1\nValue2\nValue3", res.Dataset)
}
