// Package session holds the transient state of one editing session: the generated
// dataset, the cached type catalog and the busy flag that allows one generation at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Sergiu-D/dataforge/internal/schema"
)

var (
	// ErrBusy is returned when a generation is already running.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrNoFields is returned when generation is requested with an empty field list.
	ErrNoFields = errors.New("at least one field is required")
)

// Engine is what a Session needs from the engine selector.
type Engine interface {
	Generate(ctx context.Context, s schema.Schema) (string, error)
	ListTypes(ctx context.Context) ([]schema.FieldTypeDescriptor, error)
}

// Status of the last generation.
type Status int

const (
	Idle Status = iota
	Generating
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result describes a successful generation.
type Result struct {
	Dataset  string
	Rows     int
	Warnings []string
}

// Session is safe for concurrent use.
type Session struct {
	engine Engine
	log    *zap.SugaredLogger
	busy   chan struct{} // 1-slot semaphore

	mu      sync.RWMutex
	dataset string
	status  Status
	lastErr error
	types   []schema.FieldTypeDescriptor
}

func New(engine Engine, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{
		engine: engine,
		log:    log,
		busy:   make(chan struct{}, 1),
	}
}

// Types returns the type catalog, asking the engine only once per session.
func (s *Session) Types(ctx context.Context) ([]schema.FieldTypeDescriptor, error) {
	s.mu.RLock()
	cached := s.types
	s.mu.RUnlock()
	if cached != nil {
		return append([]schema.FieldTypeDescriptor(nil), cached...), nil
	}

	types, err := s.engine.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list types: %w", err)
	}

	s.mu.Lock()
	if s.types == nil {
		s.types = types
	}
	cached = s.types
	s.mu.Unlock()
	return append([]schema.FieldTypeDescriptor(nil), cached...), nil
}

// Generate produces rows for a snapshot of fields and replaces the stored dataset.
// Row counts are clamped to the accepted range. Validation problems other than an
// empty field list are returned as warnings. On failure the previous dataset is kept.
func (s *Session) Generate(ctx context.Context, fields []schema.Field, rows int) (Result, error) {
	if len(fields) == 0 {
		return Result{}, ErrNoFields
	}

	select {
	case s.busy <- struct{}{}:
	default:
		return Result{}, ErrBusy
	}
	defer func() { <-s.busy }()

	warnings := schema.Validate(fields)
	snap := schema.Schema{Fields: fields, Rows: schema.ClampRows(rows)}.Snapshot()

	s.setStatus(Generating, nil)
	s.log.Debugw("generation started", "fields", len(snap.Fields), "rows", snap.Rows, "warnings", len(warnings))

	out, err := s.engine.Generate(ctx, snap)
	if err != nil {
		s.setStatus(Error, err)
		s.log.Errorw("generation failed", "error", err)
		return Result{}, err
	}

	s.mu.Lock()
	s.dataset = out
	s.status = Idle
	s.lastErr = nil
	s.mu.Unlock()

	return Result{Dataset: out, Rows: snap.Rows, Warnings: warnings}, nil
}

func (s *Session) setStatus(st Status, err error) {
	s.mu.Lock()
	s.status = st
	s.lastErr = err
	s.mu.Unlock()
}

// Dataset returns the current dataset and whether one exists.
func (s *Session) Dataset() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.dataset != ""
}

// Status returns the state of the last generation and its error, if any.
func (s *Session) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.lastErr
}
