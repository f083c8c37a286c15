package schema

import "fmt"

// SchemaParseError reports a schema that cannot be loaded. Path locates the
// offending record when known (for example "[2].groupName").
type SchemaParseError struct {
	Reason string
	Path   string
}

func (e *SchemaParseError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// ParseWarning reports a field-level problem that did not abort the load.
type ParseWarning struct {
	FieldContext string `json:"fieldContext"`
	Reason       string `json:"reason"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("%s: %s", w.FieldContext, w.Reason)
}

func parseErrorf(path, format string, args ...any) *SchemaParseError {
	return &SchemaParseError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
