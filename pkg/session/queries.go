package session

import (
	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// ID returns the identifier minted by the last successful load.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// CurrentState returns the navigation state.
func (s *Session) CurrentState() navigation.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.State()
}

// Actions lists the navigation commands currently offered.
func (s *Session) Actions() []navigation.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Actions()
}

// Schema returns the loaded schema, nil before the first load.
func (s *Session) Schema() *model.FormSchema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// GroupList returns the groups in schema order.
func (s *Session) GroupList() []GroupInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema == nil {
		return nil
	}
	out := make([]GroupInfo, 0, len(s.schema.Groups))
	for i, g := range s.schema.Groups {
		out = append(out, GroupInfo{Index: i, ID: g.ID, Name: g.Name})
	}
	return out
}

// ActiveGroupFields returns the visible fields of the active group with
// their current value and error. It returns nil outside GroupActive.
func (s *Session) ActiveGroupFields() []FieldView {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.nav.State()
	if state.Phase != navigation.GroupActive {
		return nil
	}
	group, ok := s.schema.Group(state.Index)
	if !ok {
		return nil
	}
	snapshot := s.store.Snapshot()
	fields := s.visibleFieldsLocked(group)
	out := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		value, _ := snapshot.Value(f.ID)
		out = append(out, FieldView{Field: f, Value: value, Error: s.errors[f.ID]})
	}
	return out
}

// FieldValue returns the current answer or calculated value of id.
func (s *Session) FieldValue(id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil, false
	}
	return s.store.Value(id)
}

// FieldError returns the validation message recorded for id, if any.
func (s *Session) FieldError(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.errors[id]
	return msg, ok
}

// Errors returns a copy of the current error map.
func (s *Session) Errors() validation.ErrorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Clone()
}

// Answers returns a copy of every stored value.
func (s *Session) Answers() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return map[string]any{}
	}
	return s.store.Snapshot().Map()
}

// Seed bulk-loads answers, as when resuming a saved session, and returns the
// ids that were skipped because they are unknown or calculated.
func (s *Session) Seed(values map[string]any) (Result, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return s.resultLocked(), nil, ErrNotLoaded
	}
	_, skipped := s.store.Seed(values)
	return s.resultLocked(), skipped, nil
}

// Warnings returns the non-fatal diagnostics of the last successful load.
func (s *Session) Warnings() []schema.ParseWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.ParseWarning(nil), s.warnings...)
}

// EvaluationErrors returns the formula failures of the latest recompute.
func (s *Session) EvaluationErrors() []formula.EvaluationError {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.EvaluationErrors()
}

// CalculationOrder returns the calculated field ids in evaluation order.
func (s *Session) CalculationOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		return nil
	}
	return s.graph.Order()
}

// Field looks up a field of the loaded schema.
func (s *Session) Field(id string) (*model.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry == nil {
		return nil, false
	}
	return s.registry.Lookup(id)
}

// Dependents returns the calculated fields that recompute when id changes,
// in evaluation order.
func (s *Session) Dependents(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		return nil
	}
	return s.graph.Dependents(id)
}

// Result describes the current session state.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultLocked()
}

func (s *Session) resultLocked() Result {
	values := map[string]any{}
	if s.store != nil {
		values = s.store.Snapshot().Map()
	}
	return Result{
		SessionID: s.id,
		State:     s.nav.State(),
		Values:    values,
		Errors:    s.errors.Clone(),
		Actions:   s.nav.Actions(),
	}
}
