// Package store holds the answers of one form-filling session. Set is the
// only way to change a raw value; every Set runs a full recompute of the
// calculated fields before the new snapshot becomes visible.
package store

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/model"
)

// UnknownFieldError reports a write to an id that is not in the registry.
type UnknownFieldError struct {
	ID string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("store: unknown field %q", e.ID)
}

// ReadOnlyFieldError reports a write to a calculated field.
type ReadOnlyFieldError struct {
	ID string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("store: field %q is calculated and cannot be set", e.ID)
}

// Snapshot is an immutable, internally consistent view of the answers.
type Snapshot struct {
	values map[string]any
}

// Value returns the value stored for id.
func (s Snapshot) Value(id string) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Map returns a copy of the snapshot contents.
func (s Snapshot) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = cloneValue(v)
	}
	return out
}

// Len returns the number of stored values.
func (s Snapshot) Len() int {
	return len(s.values)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes recompute diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the form data store of a single session.
type Store struct {
	mu       sync.RWMutex
	registry *model.Registry
	graph    *formula.Graph
	logger   *slog.Logger
	values   map[string]any
	evalErrs []formula.EvaluationError
}

// New returns a store for reg and graph and runs the initial recompute so
// formulas without raw inputs already hold their value.
func New(reg *model.Registry, graph *formula.Graph, options ...Option) *Store {
	s := &Store{
		registry: reg,
		graph:    graph,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.Reset()
	return s
}

// Reset clears every answer and recomputes.
func (s *Store) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(make(map[string]any), "")
	return s.snapshotLocked()
}

// Set writes value into the raw field id, recomputes every calculated field
// and returns the resulting snapshot.
func (s *Store) Set(id string, value any) (Snapshot, error) {
	field, ok := s.registry.Lookup(id)
	if !ok {
		return Snapshot{}, &UnknownFieldError{ID: id}
	}
	if field.Calculated() {
		return Snapshot{}, &ReadOnlyFieldError{ID: id}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := make(map[string]any, len(s.values)+1)
	for k, v := range s.values {
		working[k] = v
	}
	working[id] = model.NormalizeValue(value)
	s.apply(working, id)
	return s.snapshotLocked(), nil
}

// Seed applies several answers at once, then recomputes a single time.
// Unknown and calculated ids are skipped and returned sorted.
func (s *Store) Seed(values map[string]any) (Snapshot, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := make(map[string]any, len(s.values)+len(values))
	for k, v := range s.values {
		working[k] = v
	}
	var skipped []string
	for id, value := range values {
		field, ok := s.registry.Lookup(id)
		if !ok || field.Calculated() {
			skipped = append(skipped, id)
			continue
		}
		working[id] = model.NormalizeValue(value)
	}
	sort.Strings(skipped)
	s.apply(working, "")
	return s.snapshotLocked(), skipped
}

// apply runs the recompute pass over working and swaps it in. Callers hold
// the write lock.
func (s *Store) apply(working map[string]any, seed string) {
	outcome := s.graph.Recompute(working)
	for _, evalErr := range outcome.Errors {
		s.logger.Debug("calculation failed",
			"field", evalErr.FieldID,
			"seed", seed,
			"reason", evalErr.Reason,
		)
	}
	s.values = outcome.Values
	s.evalErrs = outcome.Errors
}

// Snapshot returns the current consistent state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	copied := make(map[string]any, len(s.values))
	for k, v := range s.values {
		copied[k] = cloneValue(v)
	}
	return Snapshot{values: copied}
}

// Value returns the current value of id.
func (s *Store) Value(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	return cloneValue(v), ok
}

// EvaluationErrors returns the failures of the most recent recompute pass.
func (s *Store) EvaluationErrors() []formula.EvaluationError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]formula.EvaluationError(nil), s.evalErrs...)
}

func cloneValue(v any) any {
	if many, ok := v.([]string); ok {
		return append([]string(nil), many...)
	}
	return v
}
