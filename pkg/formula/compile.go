package formula

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-formflow/pkg/model"
)

var allowedBinary = map[string]struct{}{
	"+": {}, "-": {}, "*": {}, "/": {}, "%": {}, "**": {}, "^": {},
	"==": {}, "!=": {}, "<": {}, ">": {}, "<=": {}, ">=": {},
	"&&": {}, "||": {}, "and": {}, "or": {},
}

var allowedUnary = map[string]struct{}{
	"!": {}, "not": {}, "-": {}, "+": {},
}

// Formula is a compiled calculation. It implements model.Calculation.
type Formula struct {
	source  string
	refs    []string
	program *vm.Program
}

var _ model.Calculation = (*Formula)(nil)

// Compile checks src against the allowed grammar and compiles it. known
// reports whether an identifier names a field; a nil known accepts every
// identifier.
func Compile(src string, known func(id string) bool) (*Formula, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil, &CompileError{Source: src, Reason: "empty expression"}
	}

	tree, err := parser.Parse(trimmed)
	if err != nil {
		return nil, &CompileError{Source: src, Reason: firstLine(err.Error())}
	}

	check := &sandbox{refs: make(map[string]struct{})}
	ast.Walk(&tree.Node, check)
	if check.err != "" {
		return nil, &CompileError{Source: src, Reason: check.err}
	}

	refs := make([]string, 0, len(check.refs))
	for id := range check.refs {
		if known != nil && !known(id) {
			return nil, &CompileError{Source: src, Reason: fmt.Sprintf("unknown field %q", id)}
		}
		refs = append(refs, id)
	}
	sort.Strings(refs)

	program, err := expr.Compile(trimmed,
		expr.DisableAllBuiltins(),
		expr.AllowUndefinedVariables(),
		expr.Function(modFunc, floatMod),
		expr.Patch(modPatcher{}),
	)
	if err != nil {
		return nil, &CompileError{Source: src, Reason: firstLine(err.Error())}
	}

	return &Formula{source: trimmed, refs: refs, program: program}, nil
}

// Source returns the expression text.
func (f *Formula) Source() string {
	return f.source
}

// Refs returns the sorted field ids read by the expression.
func (f *Formula) Refs() []string {
	return append([]string(nil), f.refs...)
}

// Eval runs the expression against env. Only the referenced ids are handed
// to the program. Integer results are returned as float64 and non-finite
// numbers are reported as errors.
func (f *Formula) Eval(env map[string]any) (any, error) {
	scoped := make(map[string]any, len(f.refs))
	for _, id := range f.refs {
		scoped[id] = operand(env[id])
	}

	out, err := expr.Run(f.program, scoped)
	if err != nil {
		return nil, fmt.Errorf("%s", firstLine(err.Error()))
	}

	value := model.NormalizeValue(out)
	if n, ok := value.(float64); ok && (math.IsNaN(n) || math.IsInf(n, 0)) {
		return nil, fmt.Errorf("result is not a finite number")
	}
	return value, nil
}

// operand converts a stored value into what the expression sees: numeric
// strings become numbers and blank strings become nil.
func operand(value any) any {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		if n, ok := model.Number(v); ok {
			return n
		}
		return v
	default:
		return model.NormalizeValue(v)
	}
}

// modFunc is not a valid identifier, so no field id can shadow it.
const modFunc = "$mod"

// modPatcher rewrites a % b into a float modulo call. Field values are
// stored as float64 and the builtin operator only accepts integers.
type modPatcher struct{}

func (modPatcher) Visit(node *ast.Node) {
	n, ok := (*node).(*ast.BinaryNode)
	if !ok || n.Operator != "%" {
		return
	}
	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: modFunc},
		Arguments: []ast.Node{n.Left, n.Right},
	})
}

func floatMod(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("modulo needs 2 operands, got %d", len(params))
	}
	a, okA := model.NormalizeValue(params[0]).(float64)
	b, okB := model.NormalizeValue(params[1]).(float64)
	if !okA || !okB {
		return nil, fmt.Errorf("invalid operation: %T %% %T", params[0], params[1])
	}
	return math.Mod(a, b), nil
}

type sandbox struct {
	refs map[string]struct{}
	err  string
}

func (s *sandbox) Visit(node *ast.Node) {
	if s.err != "" {
		return
	}
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		s.refs[n.Value] = struct{}{}
	case *ast.IntegerNode, *ast.FloatNode, *ast.StringNode, *ast.BoolNode, *ast.NilNode:
	case *ast.ConditionalNode:
	case *ast.UnaryNode:
		if _, ok := allowedUnary[n.Operator]; !ok {
			s.err = fmt.Sprintf("operator %q is not allowed", n.Operator)
		}
	case *ast.BinaryNode:
		if _, ok := allowedBinary[n.Operator]; !ok {
			s.err = fmt.Sprintf("operator %q is not allowed", n.Operator)
		}
	default:
		s.err = fmt.Sprintf("%s is not allowed", describeNode(*node))
	}
}

func describeNode(node ast.Node) string {
	switch node.(type) {
	case *ast.CallNode:
		return "function call"
	case *ast.BuiltinNode:
		return "builtin call"
	case *ast.MemberNode, *ast.ChainNode:
		return "member access"
	case *ast.ArrayNode, *ast.MapNode, *ast.PairNode:
		return "collection literal"
	default:
		return fmt.Sprintf("expression %T", node)
	}
}
