package formula

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

type fieldDef struct {
	id      string
	formula string
}

func buildRegistry(t *testing.T, defs ...fieldDef) *model.Registry {
	t.Helper()

	known := make(map[string]bool, len(defs))
	for _, def := range defs {
		known[def.id] = true
	}

	group := &model.Group{ID: "g1", Name: "Group"}
	for _, def := range defs {
		field := &model.Field{ID: def.id, Label: def.id, Kind: model.KindNumber, Group: group.ID}
		if def.formula != "" {
			compiled, err := Compile(def.formula, func(id string) bool { return known[id] })
			if err != nil {
				t.Fatalf("compile %s: %v", def.id, err)
			}
			field.FormulaSource = def.formula
			field.Calculation = compiled
		}
		group.Fields = append(group.Fields, field)
	}

	reg, err := model.NewRegistry(&model.FormSchema{Groups: []*model.Group{group}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func TestCompileCollectsSortedRefs(t *testing.T) {
	t.Parallel()

	f, err := Compile("b + a * b - 1", nil)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, f.Refs()); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
	if f.Source() != "b + a * b - 1" {
		t.Fatalf("unexpected source %q", f.Source())
	}
}

func TestCompileRejectsDisallowedConstructs(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"function call":   "foo(a)",
		"builtin":         "len(a)",
		"member access":   "a.b",
		"array literal":   "[1, 2]",
		"membership":      "a in b",
		"empty":           "   ",
		"syntax error":    "a + * b",
		"unknown field":   "a + missing",
		"string matching": `a matches "x"`,
	}

	known := func(id string) bool { return id == "a" || id == "b" }
	for name, src := range cases {
		name, src := name, src
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(src, known)
			if err == nil {
				t.Fatalf("expected compile error for %q", src)
			}
			var compileErr *CompileError
			if !errors.As(err, &compileErr) {
				t.Fatalf("expected *CompileError, got %T", err)
			}
		})
	}
}

func TestCompileAllowsArithmeticComparisonAndBoolean(t *testing.T) {
	t.Parallel()

	exprs := []string{
		"a + b",
		"(a - b) * 2 / 4 % 3",
		"a ** 2",
		"a > b && b >= 0 || !(a == b)",
		"a != b and not (a < b)",
		"a > 10 ? 1 : 0",
		"-a + 1.5",
		`a == "yes"`,
	}
	for _, src := range exprs {
		if _, err := Compile(src, nil); err != nil {
			t.Fatalf("Compile(%q) returned error: %v", src, err)
		}
	}
}

func TestFormulaEval(t *testing.T) {
	t.Parallel()

	f, err := Compile("a + b", nil)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	got, err := f.Eval(map[string]any{"a": "2", "b": 3.0})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != 5.0 {
		t.Fatalf("expected 5, got %#v", got)
	}

	if _, err := f.Eval(map[string]any{"a": "abc", "b": 3.0}); err == nil {
		t.Fatalf("expected error for non-numeric operand")
	}
	if _, err := f.Eval(map[string]any{"a": "", "b": 3.0}); err == nil {
		t.Fatalf("expected error for blank operand")
	}
}

func TestFormulaEvalModuloOnStoredNumbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  string
		env  map[string]any
		want any
	}{
		{src: "a % 3", env: map[string]any{"a": 10.0}, want: 1.0},
		{src: "a % b", env: map[string]any{"a": "7.5", "b": 2.0}, want: 1.5},
		{src: "(a - b) * 2 / 4 % 3", env: map[string]any{"a": 10.0, "b": 2.0}, want: 1.0},
		{src: "a % 2 == 0", env: map[string]any{"a": 4.0}, want: true},
	}
	for _, tc := range cases {
		f, err := Compile(tc.src, nil)
		if err != nil {
			t.Fatalf("Compile(%q) returned error: %v", tc.src, err)
		}
		got, err := f.Eval(tc.env)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", tc.src, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %#v, want %#v", tc.src, got, tc.want)
		}
	}

	f, err := Compile("a % b", nil)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if _, err := f.Eval(map[string]any{"a": 1.0, "b": 0.0}); err == nil {
		t.Fatalf("expected error for modulo by zero")
	}
	if _, err := f.Eval(map[string]any{"a": "abc", "b": 2.0}); err == nil {
		t.Fatalf("expected error for non-numeric operand")
	}
}

func TestFormulaEvalRejectsNonFinite(t *testing.T) {
	t.Parallel()

	f, err := Compile("a / b", nil)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if _, err := f.Eval(map[string]any{"a": 1.0, "b": 0.0}); err == nil {
		t.Fatalf("expected error for division by zero")
	}
}

func TestBuildOrdersDependenciesFirst(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t,
		fieldDef{id: "grand", formula: "total * 2"},
		fieldDef{id: "a"},
		fieldDef{id: "b"},
		fieldDef{id: "total", formula: "a + b"},
	)

	g, err := Build(reg)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"total", "grand"}, g.Order()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"total", "grand"}, g.Dependents("a")); diff != "" {
		t.Fatalf("dependents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, g.Dependencies("total")); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t,
		fieldDef{id: "x", formula: "y + 1"},
		fieldDef{id: "y", formula: "x + 1"},
	)

	_, err := Build(reg)
	var cycleErr *CycleDetectedError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleDetectedError, got %v", err)
	}
	if diff := cmp.Diff([]string{"x", "y"}, cycleErr.FieldIDs); diff != "" {
		t.Fatalf("cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDetectsSelfReference(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t, fieldDef{id: "x", formula: "x + 1"})

	_, err := Build(reg)
	var cycleErr *CycleDetectedError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleDetectedError, got %v", err)
	}
	if diff := cmp.Diff([]string{"x"}, cycleErr.FieldIDs); diff != "" {
		t.Fatalf("cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCycleExcludesUpstreamFields(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t,
		fieldDef{id: "head", formula: "x * 2"},
		fieldDef{id: "x", formula: "y + 1"},
		fieldDef{id: "y", formula: "z + 1"},
		fieldDef{id: "z", formula: "x + 1"},
	)

	_, err := Build(reg)
	var cycleErr *CycleDetectedError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleDetectedError, got %v", err)
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, cycleErr.FieldIDs); diff != "" {
		t.Fatalf("cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestRecomputeConvergesInOnePass(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t,
		fieldDef{id: "grand", formula: "total * 2"},
		fieldDef{id: "a"},
		fieldDef{id: "b"},
		fieldDef{id: "total", formula: "a + b"},
	)
	g, err := Build(reg)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	out := g.Recompute(map[string]any{"a": 2.0, "b": 3.0})
	if len(out.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", out.Errors)
	}
	if out.Values["total"] != 5.0 || out.Values["grand"] != 10.0 {
		t.Fatalf("unexpected values: %v", out.Values)
	}
}

func TestRecomputeKeepsPreviousValueOnError(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t,
		fieldDef{id: "a"},
		fieldDef{id: "b"},
		fieldDef{id: "total", formula: "a + b"},
		fieldDef{id: "double", formula: "b * 2"},
	)
	g, err := Build(reg)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	values := map[string]any{"a": "abc", "b": 3.0, "total": 7.0}
	out := g.Recompute(values)

	if out.Values["total"] != 7.0 {
		t.Fatalf("expected total to keep 7, got %#v", out.Values["total"])
	}
	if out.Values["double"] != 6.0 {
		t.Fatalf("expected double to be evaluated, got %#v", out.Values["double"])
	}
	if len(out.Errors) != 1 || out.Errors[0].FieldID != "total" {
		t.Fatalf("expected one error for total, got %v", out.Errors)
	}
	if values["double"] != nil {
		t.Fatalf("Recompute must not mutate its input")
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t,
		fieldDef{id: "a"},
		fieldDef{id: "total", formula: "a * 3"},
		fieldDef{id: "flag", formula: "total > 5"},
	)
	g, err := Build(reg)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	first := g.Recompute(map[string]any{"a": 2.0})
	second := g.Recompute(first.Values)
	if diff := cmp.Diff(first.Values, second.Values); diff != "" {
		t.Fatalf("second pass changed values (-first +second):\n%s", diff)
	}
	if second.Values["flag"] != true {
		t.Fatalf("expected flag true, got %#v", second.Values["flag"])
	}
}
