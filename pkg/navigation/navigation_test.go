package navigation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func active(i int) State { return State{Phase: GroupActive, Index: i} }

func TestControllerStartsUnloaded(t *testing.T) {
	t.Parallel()

	var c Controller
	if c.State().Phase != Unloaded {
		t.Fatalf("expected Unloaded, got %s", c.State())
	}
	if len(c.Actions()) != 0 {
		t.Fatalf("expected no actions before load")
	}
	for name, cmd := range map[string]func() (State, error){
		"select":   func() (State, error) { return c.Select(0) },
		"back":     c.Back,
		"previous": c.Previous,
		"next":     func() (State, error) { return c.Next(nil) },
	} {
		_, err := cmd()
		var transitionErr *TransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("%s: expected *TransitionError, got %v", name, err)
		}
	}
}

func TestControllerHappyPath(t *testing.T) {
	t.Parallel()

	var c Controller
	c.Load(3)

	if got, err := c.Select(1); err != nil || got != active(1) {
		t.Fatalf("Select(1) = %v, %v", got, err)
	}
	if got, _ := c.Next(func(int) bool { return true }); got != active(2) {
		t.Fatalf("expected active(2), got %v", got)
	}
	if got, _ := c.Previous(); got != active(1) {
		t.Fatalf("expected active(1), got %v", got)
	}
	if got, _ := c.Back(); got.Phase != GroupSelect {
		t.Fatalf("expected GroupSelect, got %v", got)
	}
}

func TestControllerNextGatedByValidation(t *testing.T) {
	t.Parallel()

	var c Controller
	c.Load(2)
	c.Select(0)

	var validated []int
	got, err := c.Next(func(i int) bool {
		validated = append(validated, i)
		return false
	})
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if got != active(0) {
		t.Fatalf("expected to stay at active(0), got %v", got)
	}
	if diff := cmp.Diff([]int{0}, validated); diff != "" {
		t.Fatalf("validated groups mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerBounds(t *testing.T) {
	t.Parallel()

	var c Controller
	c.Load(2)
	c.Select(0)

	if got, _ := c.Previous(); got != active(0) {
		t.Fatalf("Previous at 0 should be a no-op, got %v", got)
	}
	if c.Offers(ActionPrevious) {
		t.Fatalf("previous must not be offered at the first group")
	}

	c.Next(func(int) bool { return true })
	if c.Offers(ActionNext) {
		t.Fatalf("next must not be offered at the last group")
	}
	if got, _ := c.Next(func(int) bool { return true }); got != active(1) {
		t.Fatalf("Next at last group should be a no-op, got %v", got)
	}

	want := []Action{ActionPrevious, ActionBack}
	if diff := cmp.Diff(want, c.Actions()); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerSelectOutOfRange(t *testing.T) {
	t.Parallel()

	var c Controller
	c.Load(2)
	for _, i := range []int{-1, 2} {
		_, err := c.Select(i)
		var transitionErr *TransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("Select(%d): expected *TransitionError, got %v", i, err)
		}
	}
	if c.State().Phase != GroupSelect {
		t.Fatalf("failed select must not change state")
	}
}

func TestControllerLoadIsReentrant(t *testing.T) {
	t.Parallel()

	var c Controller
	c.Load(3)
	c.Select(2)
	if got := c.Load(1); got.Phase != GroupSelect {
		t.Fatalf("expected reload to reset to GroupSelect, got %v", got)
	}
	if c.GroupCount() != 1 {
		t.Fatalf("expected group count 1, got %d", c.GroupCount())
	}
}
