// Package model defines the typed survey model shared by the parser, the
// formula engine, validation and the session. A FormSchema is an ordered list
// of Groups, each an ordered list of Fields; the Registry indexes every field
// by its schema-wide unique id. Field kinds form a closed set (see Kind) and
// only choice kinds carry Options. Values flowing through the model are nil
// (unset), string, float64, bool or []string for multi-choice answers; use
// NormalizeValue before storing caller input. All types in this package are
// treated as immutable once a schema has been loaded.
package model
