package model

import "strings"

// Kind is the closed set of field kinds understood by the engine.
type Kind string

const (
	KindTextBox     Kind = "TextBox"
	KindTextArea    Kind = "TextArea"
	KindNumber      Kind = "Number"
	KindDropdown    Kind = "Dropdown"
	KindRadioButton Kind = "RadioButton"
	KindCheckBox    Kind = "CheckBox"
	KindDate        Kind = "Date"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{
	KindTextBox,
	KindTextArea,
	KindNumber,
	KindDropdown,
	KindRadioButton,
	KindCheckBox,
	KindDate,
}

var kindAliases = map[string]Kind{
	"textbox":     KindTextBox,
	"text":        KindTextBox,
	"textarea":    KindTextArea,
	"multiline":   KindTextArea,
	"number":      KindNumber,
	"numberbox":   KindNumber,
	"numeric":     KindNumber,
	"dropdown":    KindDropdown,
	"select":      KindDropdown,
	"radiobutton": KindRadioButton,
	"radio":       KindRadioButton,
	"checkbox":    KindCheckBox,
	"date":        KindDate,
	"datepicker":  KindDate,
}

// ParseKind resolves a wire questionType (case-insensitive, aliases allowed).
func ParseKind(raw string) (Kind, bool) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(raw))]
	return kind, ok
}

// IsChoice reports whether the kind selects from declared options.
func (k Kind) IsChoice() bool {
	switch k {
	case KindDropdown, KindRadioButton, KindCheckBox:
		return true
	case KindTextBox, KindTextArea, KindNumber, KindDate:
		return false
	default:
		return false
	}
}

// IsMulti reports whether the kind stores several option values.
func (k Kind) IsMulti() bool {
	return k == KindCheckBox
}

func (k Kind) String() string {
	return string(k)
}
