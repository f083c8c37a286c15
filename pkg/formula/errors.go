package formula

import (
	"fmt"
	"strings"
)

// CompileError reports a formula that cannot be used as a calculation.
type CompileError struct {
	Source string
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("formula: compile %q: %s", e.Source, e.Reason)
}

// CycleDetectedError reports calculated fields that depend on each other.
// FieldIDs holds the members of the cycle, sorted.
type CycleDetectedError struct {
	FieldIDs []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("formula: dependency cycle between %s", strings.Join(e.FieldIDs, ", "))
}

// EvaluationError records a calculated field that could not be evaluated in a
// recompute pass. The field keeps its previous value.
type EvaluationError struct {
	FieldID string `json:"fieldId"`
	Reason  string `json:"reason"`
}

func (e EvaluationError) Error() string {
	return fmt.Sprintf("formula: evaluate %s: %s", e.FieldID, e.Reason)
}

func firstLine(msg string) string {
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}
