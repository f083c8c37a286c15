package validation

import (
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
)

// DateLayout is the accepted format for Date fields.
const DateLayout = "2006-01-02"

// Values is the read side of the form data store.
type Values interface {
	Value(id string) (any, bool)
}

// MapValues adapts a plain map to Values.
type MapValues map[string]any

// Value implements Values.
func (m MapValues) Value(id string) (any, bool) {
	v, ok := m[id]
	return v, ok
}

// ErrorMap maps field ids to the message of their first failing rule.
type ErrorMap map[string]string

// Clone returns a copy that callers may keep.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Messages holds the user-facing text of each rule. {min}, {max} are
// replaced with the declared bounds.
type Messages struct {
	Required  string `toml:"required"`
	NotNumber string `toml:"not_number"`
	Date      string `toml:"date"`
	Min       string `toml:"min"`
	Max       string `toml:"max"`
	Pattern   string `toml:"pattern"`
	Option    string `toml:"option"`
}

// DefaultMessages returns the built-in English messages.
func DefaultMessages() Messages {
	return Messages{
		Required:  "This field is required",
		NotNumber: "Please enter a number",
		Date:      "Please enter a date as YYYY-MM-DD",
		Min:       "Value must be at least {min}",
		Max:       "Value must be at most {max}",
		Pattern:   "Value does not match the expected format",
		Option:    "Please choose one of the listed options",
	}
}

// Merge fills empty entries of m from fallback.
func (m Messages) Merge(fallback Messages) Messages {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	return Messages{
		Required:  pick(m.Required, fallback.Required),
		NotNumber: pick(m.NotNumber, fallback.NotNumber),
		Date:      pick(m.Date, fallback.Date),
		Min:       pick(m.Min, fallback.Min),
		Max:       pick(m.Max, fallback.Max),
		Pattern:   pick(m.Pattern, fallback.Pattern),
		Option:    pick(m.Option, fallback.Option),
	}
}

// Engine validates groups of fields.
type Engine struct {
	messages Messages
}

// New returns an Engine using messages, with defaults for any blank entry.
func New(messages Messages) *Engine {
	return &Engine{messages: messages.Merge(DefaultMessages())}
}

// Validate checks fields with the default messages.
func Validate(fields []*model.Field, values Values) (ErrorMap, bool) {
	return New(Messages{}).Validate(fields, values)
}

// Validate returns the errors for fields and whether all of them passed.
// Calculated fields are skipped: their value is owned by the formula engine.
func (e *Engine) Validate(fields []*model.Field, values Values) (ErrorMap, bool) {
	errs := make(ErrorMap)
	for _, field := range fields {
		if field == nil || field.Calculated() {
			continue
		}
		value, _ := values.Value(field.ID)
		if msg := e.check(field, value); msg != "" {
			errs[field.ID] = msg
		}
	}
	return errs, len(errs) == 0
}

// Field validates a single field and returns its message, or "".
func (e *Engine) Field(field *model.Field, value any) string {
	if field == nil || field.Calculated() {
		return ""
	}
	return e.check(field, value)
}

func (e *Engine) check(field *model.Field, value any) string {
	if model.IsBlank(value) {
		if field.Required {
			return e.messages.Required
		}
		return ""
	}

	switch field.Kind {
	case model.KindNumber:
		if _, ok := model.Number(value); !ok {
			return e.messages.NotNumber
		}
	case model.KindDate:
		if _, err := time.Parse(DateLayout, strings.TrimSpace(model.FormatValue(value))); err != nil {
			return e.messages.Date
		}
	case model.KindTextBox, model.KindTextArea, model.KindDropdown, model.KindRadioButton, model.KindCheckBox:
	}

	if n, ok := model.Number(value); ok {
		if field.Min != nil && n < *field.Min {
			return strings.ReplaceAll(e.messages.Min, "{min}", model.FormatValue(*field.Min))
		}
		if field.Max != nil && n > *field.Max {
			return strings.ReplaceAll(e.messages.Max, "{max}", model.FormatValue(*field.Max))
		}
	}

	if field.Pattern != nil && !field.Pattern.MatchString(model.FormatValue(value)) {
		return e.messages.Pattern
	}

	if len(field.Choices()) > 0 {
		for _, choice := range choices(value) {
			if !field.HasOption(choice) {
				return e.messages.Option
			}
		}
	}
	return ""
}

func choices(value any) []string {
	if many, ok := value.([]string); ok {
		return many
	}
	return []string{model.FormatValue(value)}
}
