package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// decode turns raw JSON or YAML into JSON-shaped values (map[string]any,
// []any, float64, string, bool, nil).
func decode(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &SchemaParseError{Reason: "document is empty"}
	}

	if trimmed[0] == '[' || trimmed[0] == '{' {
		var doc any
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &SchemaParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
		return doc, nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, &SchemaParseError{Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	// Round-trip through JSON so YAML ints and JSON numbers share one shape.
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &SchemaParseError{Reason: fmt.Sprintf("unsupported YAML content: %v", err)}
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, &SchemaParseError{Reason: fmt.Sprintf("unsupported YAML content: %v", err)}
	}
	return normalized, nil
}
