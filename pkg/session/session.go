// Package session is the core-to-collaborator surface of the form engine. A
// Session owns the loaded schema, the form data store, the error map and the
// navigation controller. Every command runs to completion, including the
// recompute of calculated fields, before it returns a Result describing the
// new state.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/store"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// ErrNotLoaded is returned by commands that need a schema before one has
// been loaded.
var ErrNotLoaded = errors.New("session: no schema loaded")

// GroupInfo describes one entry of the group list.
type GroupInfo struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// FieldView is a field of the active group with its current state attached.
type FieldView struct {
	Field *model.Field
	Value any
	Error string
}

// Result is returned by every command.
type Result struct {
	SessionID string              `json:"sessionId"`
	State     navigation.State    `json:"state"`
	Values    map[string]any      `json:"values"`
	Errors    validation.ErrorMap `json:"errors"`
	Actions   []navigation.Action `json:"actions"`
}

// Session is one form-filling session. The zero value is not usable; call
// New.
type Session struct {
	mu sync.Mutex

	logger       *slog.Logger
	validator    *validation.Engine
	visibility   visibility.Evaluator
	parseOptions []schema.Option
	newID        func() string

	id       string
	schema   *model.FormSchema
	registry *model.Registry
	graph    *formula.Graph
	warnings []schema.ParseWarning
	store    *store.Store
	nav      navigation.Controller
	errors   validation.ErrorMap
}

// New returns an unloaded session.
func New(options ...Option) *Session {
	s := &Session{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator:  validation.New(validation.Messages{}),
		visibility: visibility.Always,
		newID:      func() string { return uuid.New().String() },
		errors:     make(validation.ErrorMap),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// LoadSchema parses raw, builds the dependency graph and, only when every
// step succeeds, replaces the current schema, answers and errors. A failed
// load leaves the session untouched.
func (s *Session) LoadSchema(raw []byte) (Result, error) {
	parsed, err := schema.Parse(raw, s.parseOptions...)
	if err != nil {
		return s.Result(), fmt.Errorf("session: load schema: %w", err)
	}
	graph, err := formula.Build(parsed.Registry)
	if err != nil {
		return s.Result(), fmt.Errorf("session: load schema: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = s.newID()
	logger := s.logger.With("session", s.id)
	for _, w := range parsed.Warnings {
		logger.Warn("schema warning", "field", w.FieldContext, "reason", w.Reason)
	}

	s.schema = parsed.Schema
	s.registry = parsed.Registry
	s.graph = graph
	s.warnings = parsed.Warnings
	s.store = store.New(parsed.Registry, graph, store.WithLogger(logger))
	s.errors = make(validation.ErrorMap)
	s.nav.Load(parsed.Schema.GroupCount())

	logger.Info("schema loaded",
		"groups", parsed.Schema.GroupCount(),
		"fields", parsed.Registry.Len(),
		"calculated", len(graph.Order()),
		"warnings", len(parsed.Warnings),
	)
	return s.resultLocked(), nil
}

// SelectGroup activates group i from the group list.
func (s *Session) SelectGroup(i int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.nav.Select(i); err != nil {
		return s.resultLocked(), err
	}
	s.errors = make(validation.ErrorMap)
	return s.resultLocked(), nil
}

// SetField writes a raw answer and recomputes the calculated fields. The
// error map is left alone until the next validation pass.
func (s *Session) SetField(id string, value any) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return s.resultLocked(), ErrNotLoaded
	}
	if _, err := s.store.Set(id, value); err != nil {
		return s.resultLocked(), err
	}
	return s.resultLocked(), nil
}

// Next validates the active group and advances when it passes.
func (s *Session) Next() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.nav.State()
	after, err := s.nav.Next(s.validateLocked)
	if err != nil {
		return s.resultLocked(), err
	}
	if after != before {
		s.errors = make(validation.ErrorMap)
	}
	return s.resultLocked(), nil
}

// Previous moves to the preceding group without validating.
func (s *Session) Previous() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.nav.State()
	after, err := s.nav.Previous()
	if err != nil {
		return s.resultLocked(), err
	}
	if after != before {
		s.errors = make(validation.ErrorMap)
	}
	return s.resultLocked(), nil
}

// Back returns to the group list.
func (s *Session) Back() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.nav.Back(); err != nil {
		return s.resultLocked(), err
	}
	s.errors = make(validation.ErrorMap)
	return s.resultLocked(), nil
}

// Validate runs validation on the active group without moving and reports
// whether it passed. Collaborators use it to finish on the last group.
func (s *Session) Validate() (Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.nav.State()
	if state.Phase != navigation.GroupActive {
		return s.resultLocked(), false, &navigation.TransitionError{Command: "validate", State: state}
	}
	ok := s.validateLocked(state.Index)
	return s.resultLocked(), ok, nil
}

func (s *Session) validateLocked(index int) bool {
	group, ok := s.schema.Group(index)
	if !ok {
		return false
	}
	errs, valid := s.validator.Validate(s.visibleFieldsLocked(group), s.store.Snapshot())
	s.errors = errs
	return valid
}

func (s *Session) visibleFieldsLocked(group *model.Group) []*model.Field {
	values := s.store.Snapshot().Map()
	out := make([]*model.Field, 0, len(group.Fields))
	for _, field := range group.Fields {
		ctx := visibility.Context{Values: values}
		if parent, ok := s.registry.Lookup(field.ParentID); ok {
			ctx.Parent = parent
		}
		if s.visibility.Visible(field, ctx) {
			out = append(out, field)
		}
	}
	return out
}
