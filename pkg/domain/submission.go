package domain

import (
	"maps"
	"time"
)

// Submission is what a completion sink receives once a form is complete.
type Submission struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"session_id,omitempty"`
	Answers     map[string]string `json:"answers"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// NewSubmission copies the answers of a completed state.
func NewSubmission(id, sessionID string, state FormState, at time.Time) Submission {
	answers := make(map[string]string, len(state.Answers))
	maps.Copy(answers, state.Answers)
	return Submission{
		ID:          id,
		SessionID:   sessionID,
		Answers:     answers,
		SubmittedAt: at.UTC(),
	}
}
