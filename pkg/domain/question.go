package domain

import "fmt"

// QuestionKind is the discriminator of the Question sum type.
type QuestionKind string

const (
	KindYesNo    QuestionKind = "yes-no"
	KindText     QuestionKind = "text"
	KindPhone    QuestionKind = "phone"
	KindTextarea QuestionKind = "textarea"
)

// Kinds lists every question variant. Tests range over it to make sure each
// consumer of the sum type handles all of them.
func Kinds() []QuestionKind {
	return []QuestionKind{KindYesNo, KindText, KindPhone, KindTextarea}
}

// InputMode is a hint for the virtual keyboard shown by the presentation layer.
type InputMode string

const (
	InputModeText    InputMode = "text"
	InputModeNumeric InputMode = "numeric"
	InputModeDecimal InputMode = "decimal"
	InputModeTel     InputMode = "tel"
	InputModeEmail   InputMode = "email"
)

// YesNoOptions is the fixed option set of a YesNoQuestion.
var YesNoOptions = [2]string{"Yes", "No"}

// DefaultTextareaRows is used when a textarea question does not set Rows.
const DefaultTextareaRows = 4

// Question is a closed sum type. Only the variants declared in this package
// implement it.
type Question interface {
	Kind() QuestionKind
	Common() Base
	question()
}

// Base holds the fields shared by every question variant.
type Base struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
	Required bool   `json:"required"`
}

// YesNoQuestion is answered by selecting "Yes" or "No".
type YesNoQuestion struct {
	Base
}

// TextQuestion is a single-line free text question.
type TextQuestion struct {
	Base
	Placeholder string    `json:"placeholder,omitempty"`
	MinLength   int       `json:"minLength,omitempty"`
	MaxLength   int       `json:"maxLength,omitempty"`
	InputMode   InputMode `json:"inputMode,omitempty"`
}

// PhoneQuestion asks for a phone number.
type PhoneQuestion struct {
	Base
	Placeholder string `json:"placeholder"`
}

// TextareaQuestion is a multi-line free text question.
type TextareaQuestion struct {
	Base
	Placeholder string `json:"placeholder,omitempty"`
	Rows        int    `json:"rows,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

func (YesNoQuestion) Kind() QuestionKind    { return KindYesNo }
func (TextQuestion) Kind() QuestionKind     { return KindText }
func (PhoneQuestion) Kind() QuestionKind    { return KindPhone }
func (TextareaQuestion) Kind() QuestionKind { return KindTextarea }

func (q YesNoQuestion) Common() Base    { return q.Base }
func (q TextQuestion) Common() Base     { return q.Base }
func (q PhoneQuestion) Common() Base    { return q.Base }
func (q TextareaQuestion) Common() Base { return q.Base }

func (YesNoQuestion) question()    {}
func (TextQuestion) question()     {}
func (PhoneQuestion) question()    {}
func (TextareaQuestion) question() {}

// Options returns the fixed choices of a yes/no question.
func (YesNoQuestion) Options() [2]string { return YesNoOptions }

// RowCount returns Rows, falling back to DefaultTextareaRows.
func (q TextareaQuestion) RowCount() int {
	if q.Rows <= 0 {
		return DefaultTextareaRows
	}
	return q.Rows
}

// UnknownQuestionError reports a question value outside the closed set of
// variants. Reaching it means a variant was added without updating a switch.
type UnknownQuestionError struct {
	Question Question
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("unhandled question variant %T", e.Question)
}

// MustBeExhaustive panics with an UnknownQuestionError. Every type switch over
// Question calls it from its default branch.
func MustBeExhaustive(q Question) {
	panic(&UnknownQuestionError{Question: q})
}

// QuestionView is the flattened, serializable form of a question used by
// drivers (HTTP, MCP, catalog listing).
type QuestionView struct {
	Base
	Type        QuestionKind `json:"type"`
	Placeholder string       `json:"placeholder,omitempty"`
	MinLength   int          `json:"minLength,omitempty"`
	MaxLength   int          `json:"maxLength,omitempty"`
	InputMode   InputMode    `json:"inputMode,omitempty"`
	Rows        int          `json:"rows,omitempty"`
	Options     []string     `json:"options,omitempty"`
}

// ViewOf flattens a question for serialization.
func ViewOf(q Question) QuestionView {
	v := QuestionView{Base: q.Common(), Type: q.Kind()}
	switch q := q.(type) {
	case YesNoQuestion:
		v.Options = []string{YesNoOptions[0], YesNoOptions[1]}
	case TextQuestion:
		v.Placeholder = q.Placeholder
		v.MinLength = q.MinLength
		v.MaxLength = q.MaxLength
		v.InputMode = q.InputMode
	case PhoneQuestion:
		v.Placeholder = q.Placeholder
		v.InputMode = InputModeTel
	case TextareaQuestion:
		v.Placeholder = q.Placeholder
		v.Rows = q.RowCount()
		v.MinLength = q.MinLength
		v.MaxLength = q.MaxLength
	default:
		MustBeExhaustive(q)
	}
	return v
}
