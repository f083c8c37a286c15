package visibility

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/model"
)

func TestAlwaysShowsEveryField(t *testing.T) {
	t.Parallel()

	field := &model.Field{ID: "income", ParentID: "employment"}
	if !Always.Visible(field, Context{}) {
		t.Fatalf("expected Always to show the field")
	}
}

func TestEvaluatorFuncReadsParentValue(t *testing.T) {
	t.Parallel()

	parent := &model.Field{ID: "employment"}
	child := &model.Field{ID: "income", ParentID: "employment"}

	eval := EvaluatorFunc(func(_ *model.Field, ctx Context) bool {
		v, ok := ctx.ParentValue()
		return ok && v == "employed"
	})

	if eval.Visible(child, Context{Values: map[string]any{"employment": "retired"}, Parent: parent}) {
		t.Fatalf("expected income hidden for retired")
	}
	if !eval.Visible(child, Context{Values: map[string]any{"employment": "employed"}, Parent: parent}) {
		t.Fatalf("expected income visible for employed")
	}
	if _, ok := (Context{}).ParentValue(); ok {
		t.Fatalf("expected no parent value without a parent")
	}
}
