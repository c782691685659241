package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Sergiu-D/dataforge/internal/codec"
	"github.com/Sergiu-D/dataforge/internal/schema"
)

// ErrGenerationFailed is returned when even the reference generator could not produce data.
var ErrGenerationFailed = errors.New("data generation failed")

// State is the initialization state of a Selector's pluggable engine.
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Selector routes generation to the best available engine.
//
// The pluggable module is loaded and probed once, on the first Generate or ListTypes
// call. A Failed selector stays failed; build a new Selector to try again.
type Selector struct {
	loader    Loader
	reference Generator
	log       *zap.SugaredLogger

	mu     sync.Mutex // serializes initialization
	state  atomic.Int32
	module Module
	types  []schema.FieldTypeDescriptor
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Selector) { s.log = log }
}

// WithReference replaces the fallback generator.
func WithReference(g Generator) Option {
	return func(s *Selector) { s.reference = g }
}

// NewSelector returns an uninitialized Selector over loader.
func NewSelector(loader Loader, opts ...Option) *Selector {
	s := &Selector{
		loader:    loader,
		reference: Reference{},
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current initialization state.
func (s *Selector) State() State {
	return State(s.state.Load())
}

// Init loads and probes the pluggable engine if that has not happened yet, and
// returns the resulting state.
func (s *Selector) Init(ctx context.Context) State {
	if st := s.State(); st == Ready || st == Failed {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() != Uninitialized {
		return s.State()
	}
	s.state.Store(int32(Initializing))

	module, types, err := s.load(ctx)
	if err != nil {
		s.log.Warnw("pluggable engine unavailable, using reference generator", "error", err)
		s.state.Store(int32(Failed))
		return Failed
	}

	s.module = module
	s.types = types
	s.state.Store(int32(Ready))
	s.log.Infow("pluggable engine ready", "types", len(types))
	return Ready
}

func (s *Selector) load(ctx context.Context) (module Module, types []schema.FieldTypeDescriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while loading engine: %v", r)
		}
	}()

	if s.loader == nil {
		return nil, nil, ErrNoModule
	}
	module, err = s.loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if module == nil {
		return nil, nil, ErrNoModule
	}

	raw, err := module.AvailableTypes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("type probe failed: %w", err)
	}
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, nil, fmt.Errorf("type probe returned malformed data: %w", err)
	}
	if len(types) == 0 {
		return nil, nil, errors.New("type probe returned no types")
	}
	return module, types, nil
}

// ListTypes returns the catalog of the pluggable engine when it is ready, and the
// built-in catalog otherwise. The two are never merged.
func (s *Selector) ListTypes(ctx context.Context) ([]schema.FieldTypeDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Init(ctx) == Ready {
		return append([]schema.FieldTypeDescriptor(nil), s.types...), nil
	}
	return schema.BuiltinTypes(), nil
}

// Generate returns CSV for sc from the pluggable engine, or from the reference
// generator when the engine is unavailable or misbehaves.
func (s *Selector) Generate(ctx context.Context, sc schema.Schema) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if s.Init(ctx) == Ready {
		out, err := s.delegate(ctx, sc)
		if err == nil {
			return out, nil
		}
		s.log.Warnw("pluggable engine failed, using reference generator",
			"error", err, "fields", len(sc.Fields), "rows", sc.Rows)
	} else {
		s.log.Warnw("pluggable engine unavailable, using reference generator",
			"state", s.State().String(), "fields", len(sc.Fields), "rows", sc.Rows)
	}

	out, err := s.runReference(ctx, sc)
	if err != nil {
		s.log.Errorw("reference generator failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return out, nil
}

func (s *Selector) delegate(ctx context.Context, sc schema.Schema) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in pluggable engine: %v", r)
		}
	}()

	payload, err := json.Marshal(schema.ToPayload(sc))
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	raw, err := s.module.GenerateData(ctx, payload)
	if err != nil {
		return "", err
	}
	out = string(raw)
	if err := checkShape(out, sc); err != nil {
		return "", err
	}
	return out, nil
}

func (s *Selector) runReference(ctx context.Context, sc schema.Schema) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in reference generator: %v", r)
		}
	}()
	return s.reference.Generate(ctx, sc)
}

// checkShape rejects output that is empty or has the wrong line count or header width.
func checkShape(out string, sc schema.Schema) error {
	if strings.TrimSpace(out) == "" {
		return errors.New("malformed output: empty")
	}
	header, rows := codec.Decode(out)
	if len(header) != len(sc.Fields) {
		return fmt.Errorf("malformed output: header has %d columns, want %d", len(header), len(sc.Fields))
	}
	if want := max(sc.Rows, 0); len(rows) != want {
		return fmt.Errorf("malformed output: %d data rows, want %d", len(rows), want)
	}
	return nil
}
