// Package validation checks the fields of the active group against their
// declared constraints. Validation is stateless: it reads values through the
// Values interface and returns a fresh ErrorMap, never mutating the store.
package validation
