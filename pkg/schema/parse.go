package schema

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/model"
)

// Result is the output of a successful Parse.
type Result struct {
	Schema   *model.FormSchema
	Registry *model.Registry
	Warnings []ParseWarning
}

// Option configures Parse.
type Option func(*parser)

// WithStrict promotes every ParseWarning to a fatal *SchemaParseError.
func WithStrict() Option {
	return func(p *parser) {
		p.strict = true
	}
}

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

type parser struct {
	strict   bool
	warnings []ParseWarning
}

// Parse decodes raw schema bytes and builds the typed schema and registry.
func Parse(raw []byte, options ...Option) (*Result, error) {
	p := &parser{}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}

	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}
	records, ok := doc.([]any)
	if !ok {
		return nil, &SchemaParseError{Reason: "top-level value must be a sequence of groups"}
	}

	schema := &model.FormSchema{}
	seen := make(map[string]string)
	for i, record := range records {
		group, err := p.parseGroup(i, record, seen)
		if err != nil {
			return nil, err
		}
		schema.Groups = append(schema.Groups, group)
	}

	reg, err := model.NewRegistry(schema)
	if err != nil {
		return nil, &SchemaParseError{Reason: err.Error()}
	}

	p.checkParents(schema, reg)
	p.compileCalculations(schema, reg)

	if p.strict && len(p.warnings) > 0 {
		w := p.warnings[0]
		return nil, &SchemaParseError{Path: w.FieldContext, Reason: "strict mode: " + w.Reason}
	}

	return &Result{Schema: schema, Registry: reg, Warnings: p.warnings}, nil
}

func (p *parser) warn(context, format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{FieldContext: context, Reason: fmt.Sprintf(format, args...)})
}

func (p *parser) parseGroup(index int, record any, seen map[string]string) (*model.Group, error) {
	path := fmt.Sprintf("[%d]", index)
	obj, ok := record.(map[string]any)
	if !ok {
		return nil, parseErrorf(path, "group record must be an object")
	}
	if err := checkShape(path, obj); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(stringValue(obj[keyGroupID]))
	if id == "" {
		return nil, parseErrorf(path+"."+keyGroupID, "group id is required")
	}
	name := sanitizeLabel(stringValue(obj[keyGroupName]))
	if name == "" {
		return nil, parseErrorf(path+"."+keyGroupName, "group name is required")
	}

	group := &model.Group{ID: id, Name: name}
	questions, _ := obj[keyQuestions].([]any)
	for j, q := range questions {
		context := fmt.Sprintf("%s[%d]", id, j)
		// ids are claimed before the record is checked so a dropped record
		// still collides with later declarations.
		if fieldID := recordID(q); fieldID != "" {
			if owner, dup := seen[fieldID]; dup {
				return nil, parseErrorf(path, "duplicate field id %q (already declared in group %q)", fieldID, owner)
			}
			seen[fieldID] = id
		}
		field, ok := p.parseField(context, id, q)
		if !ok {
			continue
		}
		group.Fields = append(group.Fields, field)
	}
	return group, nil
}

func (p *parser) parseField(context, groupID string, record any) (*model.Field, bool) {
	obj, ok := record.(map[string]any)
	if !ok {
		p.warn(context, "field record must be an object")
		return nil, false
	}

	id := strings.TrimSpace(stringValue(obj[keyID]))
	if id == "" {
		p.warn(context, "missing %s", keyID)
		return nil, false
	}
	context = groupID + "/" + id

	rawLabel, hasLabel := obj[keyLabel]
	if !hasLabel || strings.TrimSpace(stringValue(rawLabel)) == "" {
		p.warn(context, "missing %s", keyLabel)
		return nil, false
	}
	rawType := strings.TrimSpace(stringValue(obj[keyType]))
	if rawType == "" {
		p.warn(context, "missing %s", keyType)
		return nil, false
	}
	kind, known := model.ParseKind(rawType)
	if !known {
		p.warn(context, "unsupported %s %q", keyType, rawType)
		return nil, false
	}

	label := sanitizeLabel(stringValue(rawLabel))
	if label == "" {
		label = model.Humanize(id)
	}

	field := &model.Field{
		ID:       id,
		Label:    label,
		Kind:     kind,
		Group:    groupID,
		Required: p.boolValue(context, obj[keyRequired]),
		ParentID: strings.TrimSpace(stringValue(obj[keyParent])),
	}

	p.parseOptions(context, field, obj[keyOptions])
	field.Min = p.bound(context, keyMin, obj[keyMin])
	field.Max = p.bound(context, keyMax, obj[keyMax])
	if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
		p.warn(context, "%s %v is greater than %s %v; bounds ignored", keyMin, *field.Min, keyMax, *field.Max)
		field.Min, field.Max = nil, nil
	}

	if pattern := stringValue(obj[keyRegex]); strings.TrimSpace(pattern) != "" {
		field.PatternSource = pattern
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			p.warn(context, "invalid %s: %v", keyRegex, err)
		} else {
			field.Pattern = compiled
		}
	}

	field.FormulaSource = strings.TrimSpace(stringValue(obj[keyCalculation]))
	return field, true
}

func (p *parser) parseOptions(context string, field *model.Field, raw any) {
	if raw == nil {
		if field.Kind.IsChoice() {
			p.warn(context, "%s field declares no options", field.Kind)
		}
		return
	}
	if !field.Kind.IsChoice() {
		p.warn(context, "%s ignored for %s field", keyOptions, field.Kind)
		return
	}
	entries, ok := raw.([]any)
	if !ok {
		p.warn(context, "%s must be a sequence", keyOptions)
		return
	}
	for k, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			p.warn(context, "%s[%d] must be an object", keyOptions, k)
			continue
		}
		value := stringValue(obj["value"])
		if strings.TrimSpace(value) == "" {
			p.warn(context, "%s[%d] has no value", keyOptions, k)
			continue
		}
		label := sanitizeLabel(stringValue(obj["label"]))
		if label == "" {
			label = value
		}
		field.Options = append(field.Options, model.Option{Label: label, Value: value})
	}
}

func (p *parser) bound(context, key string, raw any) *float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		if n, ok := model.Number(v); ok {
			return &n
		}
	}
	p.warn(context, "%s is not numeric; ignored", key)
	return nil
}

func (p *parser) boolValue(context string, raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		if strings.TrimSpace(v) == "" {
			return false
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed
		}
	}
	p.warn(context, "%s is not a boolean; treated as false", keyRequired)
	return false
}

func (p *parser) checkParents(schema *model.FormSchema, reg *model.Registry) {
	for _, group := range schema.Groups {
		for _, field := range group.Fields {
			if field.ParentID == "" || reg.Has(field.ParentID) {
				continue
			}
			p.warn(group.ID+"/"+field.ID, "%s %q does not match any field", keyParent, field.ParentID)
		}
	}
}

// compileCalculations runs once the registry is complete so formulas can
// reference fields declared in later groups.
func (p *parser) compileCalculations(schema *model.FormSchema, reg *model.Registry) {
	for _, group := range schema.Groups {
		for _, field := range group.Fields {
			if field.FormulaSource == "" {
				continue
			}
			compiled, err := formula.Compile(field.FormulaSource, reg.Has)
			if err != nil {
				p.warn(group.ID+"/"+field.ID, "calculation disabled: %v", err)
				continue
			}
			field.Calculation = compiled
		}
	}
}

func recordID(record any) string {
	obj, ok := record.(map[string]any)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringValue(obj[keyID]))
}

func stringValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return model.FormatValue(model.NormalizeValue(v))
	}
}

// sanitizeLabel strips markup from untrusted label text.
func sanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(labelPolicy.Sanitize(trimmed)))
}
