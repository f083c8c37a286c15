// Package formula compiles calculated-field expressions and keeps derived
// values consistent.
//
// Expressions are parsed with expr-lang and then checked against an allow-list
// of AST nodes: field identifiers, literals, arithmetic, comparison, boolean
// operators and the ternary conditional. Calls, builtins, member access,
// collections and pipes are rejected at compile time, so a schema can only
// describe arithmetic over its own fields.
//
// Build derives the dependency graph from a model.Registry and orders the
// calculated fields topologically. Recompute evaluates every calculated field
// in that order against a working copy of the values, so each pass converges
// in one sweep.
package formula
