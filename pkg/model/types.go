package model

import "regexp"

// Option is a single choice offered by Dropdown, RadioButton and CheckBox
// fields.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Calculation is a compiled formula attached to a calculated field. The
// formula package provides the only implementation; the interface keeps the
// model free of evaluator details.
type Calculation interface {
	Source() string
	Refs() []string
	Eval(env map[string]any) (any, error)
}

// Field models one question of the survey. Kind tags the variant: Options
// only carries data for choice kinds and is read through Choices, Min and
// Max only apply to Number, and Calculation is set only for derived fields.
type Field struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Options  []Option `json:"options,omitempty"`
	Required bool     `json:"required"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	ParentID string   `json:"parentId,omitempty"`

	// PatternSource keeps the declared regex; Pattern is nil when it did not
	// compile.
	PatternSource string         `json:"regex,omitempty"`
	Pattern       *regexp.Regexp `json:"-"`

	// FormulaSource keeps the declared calculation even when it failed to
	// compile. Calculation is nil for raw fields.
	FormulaSource string      `json:"calculation,omitempty"`
	Calculation   Calculation `json:"-"`

	// Group is the id of the owning group.
	Group string `json:"group"`
}

// Calculated reports whether the field value is derived by a formula.
func (f *Field) Calculated() bool {
	return f != nil && f.Calculation != nil
}

// Choices returns the declared options of a choice field and nil for every
// other kind.
func (f *Field) Choices() []Option {
	if f == nil || !f.Kind.IsChoice() {
		return nil
	}
	return f.Options
}

// HasOption reports whether value matches one of the declared options.
func (f *Field) HasOption(value string) bool {
	for _, opt := range f.Choices() {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Group is an ordered page of fields shown together.
type Group struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Fields []*Field `json:"fields"`
}

// FormSchema is the ordered list of groups. Navigation follows this order.
type FormSchema struct {
	Groups []*Group `json:"groups"`
}

// GroupCount returns the number of groups.
func (s *FormSchema) GroupCount() int {
	if s == nil {
		return 0
	}
	return len(s.Groups)
}

// Group returns the group at index i.
func (s *FormSchema) Group(i int) (*Group, bool) {
	if s == nil || i < 0 || i >= len(s.Groups) {
		return nil, false
	}
	return s.Groups[i], true
}
