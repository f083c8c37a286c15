// Package navigation sequences the groups of a loaded schema. The controller
// is a small state machine over Unloaded, GroupSelect and GroupActive(i);
// moving forward is gated by a validation callback, moving backward never is.
package navigation

import (
	"fmt"
	"strconv"
)

// Phase identifies the state kind.
type Phase int

const (
	Unloaded Phase = iota
	GroupSelect
	GroupActive
)

func (p Phase) String() string {
	switch p {
	case Unloaded:
		return "unloaded"
	case GroupSelect:
		return "group-select"
	case GroupActive:
		return "group-active"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// MarshalText renders the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the navigation state. Index is meaningful only for GroupActive.
type State struct {
	Phase Phase `json:"phase"`
	Index int   `json:"index"`
}

func (s State) String() string {
	if s.Phase == GroupActive {
		return fmt.Sprintf("%s(%d)", s.Phase, s.Index)
	}
	return s.Phase.String()
}

// Action names a command the controller currently accepts.
type Action string

const (
	ActionSelect   Action = "select"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionBack     Action = "back"
)

// TransitionError reports a command issued in a state that does not accept
// it.
type TransitionError struct {
	Command string
	State   State
	Reason  string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("navigation: %s not allowed in %s: %s", e.Command, e.State, e.Reason)
	}
	return fmt.Sprintf("navigation: %s not allowed in %s", e.Command, e.State)
}

// Controller is the navigation state machine. The zero value is Unloaded.
type Controller struct {
	state  State
	groups int
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// GroupCount returns the number of groups of the loaded schema.
func (c *Controller) GroupCount() int {
	return c.groups
}

// Load installs a schema with groupCount groups. It is valid from any state
// and always lands in GroupSelect.
func (c *Controller) Load(groupCount int) State {
	if groupCount < 0 {
		groupCount = 0
	}
	c.groups = groupCount
	c.state = State{Phase: GroupSelect}
	return c.state
}

// Select activates group i from GroupSelect.
func (c *Controller) Select(i int) (State, error) {
	if c.state.Phase != GroupSelect {
		return c.state, &TransitionError{Command: "select", State: c.state}
	}
	if i < 0 || i >= c.groups {
		return c.state, &TransitionError{Command: "select", State: c.state, Reason: fmt.Sprintf("group index %d out of range [0,%d)", i, c.groups)}
	}
	c.state = State{Phase: GroupActive, Index: i}
	return c.state, nil
}

// Back returns from an active group to GroupSelect.
func (c *Controller) Back() (State, error) {
	if c.state.Phase != GroupActive {
		return c.state, &TransitionError{Command: "back", State: c.state}
	}
	c.state = State{Phase: GroupSelect}
	return c.state, nil
}

// Next validates the active group through valid and advances when it
// passes. At the last group a passing Next leaves the state unchanged.
func (c *Controller) Next(valid func(index int) bool) (State, error) {
	if c.state.Phase != GroupActive {
		return c.state, &TransitionError{Command: "next", State: c.state}
	}
	if valid != nil && !valid(c.state.Index) {
		return c.state, nil
	}
	if c.state.Index+1 < c.groups {
		c.state.Index++
	}
	return c.state, nil
}

// Previous moves to the preceding group without validating. It is a no-op
// at the first group.
func (c *Controller) Previous() (State, error) {
	if c.state.Phase != GroupActive {
		return c.state, &TransitionError{Command: "previous", State: c.state}
	}
	if c.state.Index > 0 {
		c.state.Index--
	}
	return c.state, nil
}

// Actions lists the commands the UI should offer in the current state.
func (c *Controller) Actions() []Action {
	switch c.state.Phase {
	case GroupSelect:
		if c.groups == 0 {
			return nil
		}
		return []Action{ActionSelect}
	case GroupActive:
		var out []Action
		if c.state.Index > 0 {
			out = append(out, ActionPrevious)
		}
		if c.state.Index+1 < c.groups {
			out = append(out, ActionNext)
		}
		return append(out, ActionBack)
	default:
		return nil
	}
}

// Offers reports whether action is currently available.
func (c *Controller) Offers(action Action) bool {
	for _, a := range c.Actions() {
		if a == action {
			return true
		}
	}
	return false
}
