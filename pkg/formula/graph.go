package formula

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formflow/pkg/model"
)

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// Graph is the dependency graph of the calculated fields of one schema. It is
// immutable after Build.
type Graph struct {
	registry   *model.Registry
	deps       map[string][]string
	dependents map[string][]string
	order      []string
}

// Build derives the dependency graph from reg and orders the calculated
// fields so every field comes after the calculated fields it reads. A cycle
// fails with *CycleDetectedError.
func Build(reg *model.Registry) (*Graph, error) {
	g := &Graph{
		registry:   reg,
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}

	calculated := reg.Calculated()
	for _, field := range calculated {
		refs := field.Calculation.Refs()
		for _, ref := range refs {
			if !reg.Has(ref) {
				return nil, fmt.Errorf("formula: field %q references unknown field %q", field.ID, ref)
			}
			g.dependents[ref] = append(g.dependents[ref], field.ID)
		}
		g.deps[field.ID] = refs
	}

	states := make(map[string]visitState, len(calculated))
	var stack []string
	var visit func(id string) error
	visit = func(id string) error {
		switch states[id] {
		case stateVisiting:
			return &CycleDetectedError{FieldIDs: cycleFrom(stack, id)}
		case stateDone:
			return nil
		}
		states[id] = stateVisiting
		stack = append(stack, id)
		for _, ref := range g.deps[id] {
			if _, calc := g.deps[ref]; !calc {
				continue
			}
			if err := visit(ref); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		states[id] = stateDone
		g.order = append(g.order, id)
		return nil
	}

	for _, field := range calculated {
		if err := visit(field.ID); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func cycleFrom(stack []string, id string) []string {
	start := len(stack) - 1
	for start >= 0 && stack[start] != id {
		start--
	}
	if start < 0 {
		start = 0
	}
	members := append([]string(nil), stack[start:]...)
	sort.Strings(members)
	return members
}

// Order returns the calculated field ids in evaluation order.
func (g *Graph) Order() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.order...)
}

// Dependencies returns the ids read by the calculated field id.
func (g *Graph) Dependencies(id string) []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.deps[id]...)
}

// Dependents returns every calculated field that reads id directly or
// transitively, in evaluation order.
func (g *Graph) Dependents(id string) []string {
	if g == nil {
		return nil
	}
	reached := make(map[string]struct{})
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[current] {
			if _, seen := reached[dep]; seen {
				continue
			}
			reached[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}

	out := make([]string, 0, len(reached))
	for _, calc := range g.order {
		if _, ok := reached[calc]; ok {
			out = append(out, calc)
		}
	}
	return out
}

// Outcome is the result of one recompute pass.
type Outcome struct {
	Values map[string]any
	Errors []EvaluationError
}

// Recompute evaluates every calculated field in topological order against a
// copy of values. Each field sees the values computed earlier in the same
// pass. A field that fails keeps its previous value and the pass continues.
func (g *Graph) Recompute(values map[string]any) Outcome {
	out := Outcome{Values: make(map[string]any, len(values))}
	for id, value := range values {
		out.Values[id] = value
	}
	if g == nil {
		return out
	}

	for _, id := range g.order {
		field, ok := g.registry.Lookup(id)
		if !ok || !field.Calculated() {
			continue
		}
		value, err := field.Calculation.Eval(out.Values)
		if err != nil {
			out.Errors = append(out.Errors, EvaluationError{FieldID: id, Reason: err.Error()})
			continue
		}
		out.Values[id] = value
	}
	return out
}
