package schema

// Group mirrors one group record of the wire format.
type Group struct {
	GroupID   string  `json:"groupId" yaml:"groupId" jsonschema:"description=Group identifier"`
	GroupName string  `json:"groupName" yaml:"groupName" jsonschema:"description=Display name"`
	Questions []Field `json:"lstViewQuestionModel,omitempty" yaml:"lstViewQuestionModel,omitempty" jsonschema:"description=Ordered field records"`
}

// Field mirrors one field record of the wire format.
type Field struct {
	QuestionID          string   `json:"questionId" yaml:"questionId" jsonschema:"description=Schema-wide unique field id"`
	Question            string   `json:"question" yaml:"question" jsonschema:"description=Field label"`
	QuestionType        string   `json:"questionType" yaml:"questionType" jsonschema:"enum=TextBox,enum=TextArea,enum=Number,enum=Dropdown,enum=RadioButton,enum=CheckBox,enum=Date"`
	ControlValue        []ControlValue `json:"controlValue,omitempty" yaml:"controlValue,omitempty" jsonschema:"description=Choices for Dropdown/RadioButton/CheckBox"`
	Required            bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinValue            *float64 `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue            *float64 `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Regex               string   `json:"regex,omitempty" yaml:"regex,omitempty"`
	ParentQuestionID    string   `json:"parentQuestionId,omitempty" yaml:"parentQuestionId,omitempty"`
	QuestionCalculation string   `json:"questionCalculation,omitempty" yaml:"questionCalculation,omitempty" jsonschema:"description=Formula over other field ids"`
}

// ControlValue mirrors one controlValue entry.
type ControlValue struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// groupShape is the structural contract enforced before field records are
// read. Field records are left untyped so a broken record is dropped with a
// warning by the parser instead of failing the whole document.
type groupShape struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	Questions []any  `json:"lstViewQuestionModel,omitempty"`
}

const (
	keyGroupID     = "groupId"
	keyGroupName   = "groupName"
	keyQuestions   = "lstViewQuestionModel"
	keyID          = "questionId"
	keyLabel       = "question"
	keyType        = "questionType"
	keyOptions     = "controlValue"
	keyRequired    = "required"
	keyMin         = "minValue"
	keyMax         = "maxValue"
	keyRegex       = "regex"
	keyParent      = "parentQuestionId"
	keyCalculation = "questionCalculation"
)
