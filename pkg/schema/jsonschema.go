package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	wireSchemaID  = "https://github.com/goliatone/go-formflow/schemas/group-v1.json"
	shapeSchemaID = "formflow-group-shape.json"
)

var (
	shapeOnce   sync.Once
	shapeSchema *sjsonschema.Schema
	shapeErr    error

	issuePrinter = message.NewPrinter(language.English)
)

// GenerateJSONSchema produces the Draft 2020-12 JSON Schema describing one
// group record of the wire format. A schema document is an array of these.
func GenerateJSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	s := r.Reflect(&Group{})
	s.ID = wireSchemaID
	s.Title = "Survey group"
	s.Description = "One entry of the top-level group sequence of a survey schema"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: marshal json schema: %w", err)
	}
	return data, nil
}

func compiledShape() (*sjsonschema.Schema, error) {
	shapeOnce.Do(func() {
		r := &jsonschema.Reflector{
			AllowAdditionalProperties: true,
			DoNotReference:            true,
		}
		raw, err := json.Marshal(r.Reflect(&groupShape{}))
		if err != nil {
			shapeErr = fmt.Errorf("schema: marshal shape: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			shapeErr = fmt.Errorf("schema: unmarshal shape: %w", err)
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource(shapeSchemaID, doc); err != nil {
			shapeErr = fmt.Errorf("schema: add shape resource: %w", err)
			return
		}
		shapeSchema, shapeErr = c.Compile(shapeSchemaID)
	})
	return shapeSchema, shapeErr
}

// checkShape validates one decoded group record against the structural
// contract and returns the first violation.
func checkShape(path string, record any) error {
	sch, err := compiledShape()
	if err != nil {
		return err
	}
	err = sch.Validate(record)
	if err == nil {
		return nil
	}

	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return &SchemaParseError{Path: path, Reason: err.Error()}
	}
	leaf := firstLeaf(ve)
	location := path
	if len(leaf.InstanceLocation) > 0 {
		location = path + "." + strings.Join(leaf.InstanceLocation, ".")
	}
	return &SchemaParseError{Path: location, Reason: leaf.ErrorKind.LocalizedString(issuePrinter)}
}

func firstLeaf(ve *sjsonschema.ValidationError) *sjsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
