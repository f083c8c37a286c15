package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/schema"
)

const totalsSchema = `[
  {"groupId": "g", "groupName": "Totals", "lstViewQuestionModel": [
    {"questionId": "a", "question": "A", "questionType": "Number"},
    {"questionId": "b", "question": "B", "questionType": "Number"},
    {"questionId": "total", "question": "Total", "questionType": "Number", "questionCalculation": "a + b"},
    {"questionId": "double", "question": "Double B", "questionType": "Number", "questionCalculation": "b * 2"},
    {"questionId": "rate", "question": "Rate", "questionType": "Number", "questionCalculation": "21"}
  ]}
]`

func newStore(t *testing.T, raw string) *Store {
	t.Helper()
	res, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	graph, err := formula.Build(res.Registry)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return New(res.Registry, graph)
}

func mustSet(t *testing.T, s *Store, id string, value any) Snapshot {
	t.Helper()
	snap, err := s.Set(id, value)
	if err != nil {
		t.Fatalf("Set(%s): %v", id, err)
	}
	return snap
}

func TestStoreInitialPassEvaluatesConstants(t *testing.T) {
	t.Parallel()

	s := newStore(t, totalsSchema)
	if v, _ := s.Value("rate"); v != 21.0 {
		t.Fatalf("expected constant formula to be evaluated at load, got %#v", v)
	}
	if _, ok := s.Value("total"); ok {
		t.Fatalf("expected total to stay unset while inputs are empty")
	}
}

func TestStoreConvergenceIsOrderIndependent(t *testing.T) {
	t.Parallel()

	first := newStore(t, totalsSchema)
	mustSet(t, first, "a", 2)
	snapA := mustSet(t, first, "b", 3)

	second := newStore(t, totalsSchema)
	mustSet(t, second, "b", 3)
	snapB := mustSet(t, second, "a", 2)

	if v, _ := snapA.Value("total"); v != 5.0 {
		t.Fatalf("expected total 5, got %#v", v)
	}
	if diff := cmp.Diff(snapA.Map(), snapB.Map()); diff != "" {
		t.Fatalf("snapshots differ by write order (-ab +ba):\n%s", diff)
	}
}

func TestStoreEvaluationErrorKeepsPreviousValue(t *testing.T) {
	t.Parallel()

	s := newStore(t, totalsSchema)
	mustSet(t, s, "a", 2)
	mustSet(t, s, "b", 3)

	snap := mustSet(t, s, "a", "abc")
	if v, _ := snap.Value("total"); v != 5.0 {
		t.Fatalf("expected total to keep 5, got %#v", v)
	}

	snap = mustSet(t, s, "b", 4)
	if v, _ := snap.Value("total"); v != 5.0 {
		t.Fatalf("expected total to keep 5, got %#v", v)
	}
	if v, _ := snap.Value("double"); v != 8.0 {
		t.Fatalf("expected double to be recomputed despite the failing field, got %#v", v)
	}

	errs := s.EvaluationErrors()
	if len(errs) != 1 || errs[0].FieldID != "total" {
		t.Fatalf("expected one evaluation error for total, got %v", errs)
	}
}

func TestStoreRejectsUnknownAndCalculatedFields(t *testing.T) {
	t.Parallel()

	s := newStore(t, totalsSchema)

	_, err := s.Set("ghost", 1)
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) || unknown.ID != "ghost" {
		t.Fatalf("expected *UnknownFieldError, got %v", err)
	}

	_, err = s.Set("total", 10)
	var readOnly *ReadOnlyFieldError
	if !errors.As(err, &readOnly) {
		t.Fatalf("expected *ReadOnlyFieldError, got %v", err)
	}
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	t.Parallel()

	s := newStore(t, totalsSchema)
	snap := mustSet(t, s, "a", 1)

	copied := snap.Map()
	copied["a"] = 99.0

	if v, _ := s.Value("a"); v != 1.0 {
		t.Fatalf("store mutated through snapshot copy: %#v", v)
	}
	if v, _ := snap.Value("a"); v != 1.0 {
		t.Fatalf("snapshot mutated through its copy: %#v", v)
	}
}

func TestStoreSeedSkipsUnknownAndCalculated(t *testing.T) {
	t.Parallel()

	s := newStore(t, totalsSchema)
	snap, skipped := s.Seed(map[string]any{"a": "4", "b": 6, "total": 1, "nope": true})

	if diff := cmp.Diff([]string{"nope", "total"}, skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
	if v, _ := snap.Value("total"); v != 10.0 {
		t.Fatalf("expected total 10 after seeding, got %#v", v)
	}
}

func TestStoreResetClearsAnswers(t *testing.T) {
	t.Parallel()

	s := newStore(t, totalsSchema)
	mustSet(t, s, "a", 1)
	mustSet(t, s, "b", 1)

	snap := s.Reset()
	if _, ok := snap.Value("a"); ok {
		t.Fatalf("expected a to be cleared")
	}
	if _, ok := snap.Value("total"); ok {
		t.Fatalf("expected total to be cleared")
	}
	if v, _ := snap.Value("rate"); v != 21.0 {
		t.Fatalf("expected constant to be recomputed, got %#v", v)
	}
}
