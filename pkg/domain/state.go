package domain

import "maps"

// Direction marks which way the last step change went. It only exists so the
// presentation layer can pick an animation.
type Direction string

const (
	DirectionNone     Direction = ""
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// FormState is an immutable snapshot of one survey session.
// Transitions never mutate a FormState; they return a new one.
type FormState struct {
	// CurrentStep is the 0-based index of the displayed question.
	CurrentStep int `json:"currentStep"`

	// Answers maps question ids to the raw text entered by the user.
	Answers map[string]string `json:"answers"`

	// IsComplete is set by a successful Submit and never reset.
	IsComplete bool `json:"isComplete"`

	// Validation always describes the question at CurrentStep.
	Validation ValidationResult `json:"validation"`

	// Transition is consumed (and cleared) by the presentation layer.
	Transition Direction `json:"transitionDirection"`
}

// NewFormState returns the initial state of every session.
func NewFormState() FormState {
	return FormState{
		CurrentStep: 0,
		Answers:     make(map[string]string),
		Validation:  Untouched(),
		Transition:  DirectionNone,
	}
}

// Clone returns a copy that shares no map with s.
func (s FormState) Clone() FormState {
	next := s
	next.Answers = make(map[string]string, len(s.Answers))
	maps.Copy(next.Answers, s.Answers)
	return next
}

// Answer returns the stored answer for id, or "" when unanswered.
func (s FormState) Answer(id string) string {
	return s.Answers[id]
}

// Equal reports whether two snapshots carry the same values.
func (s FormState) Equal(o FormState) bool {
	return s.CurrentStep == o.CurrentStep &&
		s.IsComplete == o.IsComplete &&
		s.Validation == o.Validation &&
		s.Transition == o.Transition &&
		maps.Equal(s.Answers, o.Answers)
}
