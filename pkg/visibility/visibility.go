// Package visibility is the extension point for conditional display. Fields
// may name a controlling field (model.Field.ParentID); the session asks an
// Evaluator whether each field of the active group is shown. The default
// evaluator shows every field, so the engine defines no hide/disable policy
// of its own.
package visibility

import "github.com/goliatone/go-formflow/pkg/model"

// Evaluator decides whether a field is visible given the current answers.
type Evaluator interface {
	Visible(field *model.Field, ctx Context) bool
}

// Context provides the inputs to an Evaluator. Values is a read-only copy of
// the current snapshot; Parent is the controlling field when ParentID
// resolves, nil otherwise.
type Context struct {
	Values map[string]any
	Parent *model.Field
}

// ParentValue returns the current answer of the controlling field.
func (c Context) ParentValue() (any, bool) {
	if c.Parent == nil {
		return nil, false
	}
	v, ok := c.Values[c.Parent.ID]
	return v, ok
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field *model.Field, ctx Context) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field *model.Field, ctx Context) bool {
	return fn(field, ctx)
}

// Always shows every field.
var Always Evaluator = EvaluatorFunc(func(*model.Field, Context) bool { return true })
