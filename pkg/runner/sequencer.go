package runner

import (
	"context"
	"time"

	"github.com/steltz/stepper/pkg/domain"
)

// DefaultTransitionDuration is how long a step change is shown before the
// transition marker is cleared.
const DefaultTransitionDuration = 300 * time.Millisecond

// Messages shown once a survey has been submitted.
const (
	CompletionTitle   = "Thank you!"
	CompletionMessage = "Your responses have been submitted."
)

// DispatchFunc applies one action and returns the resulting state.
type DispatchFunc func(ctx context.Context, action domain.Action) (domain.FormState, error)

// Sequencer plays the presentation side of a step change: it waits for the
// transition to be visible and then acknowledges it with ClearTransition.
type Sequencer struct {
	Duration time.Duration

	// Format styles the completion message. Nil joins the lines as is.
	Format func(title, message string) string
}

// Settle clears a pending transition after Duration. States without a
// transition are returned unchanged. A cancelled context ends the wait early
// and the marker is left in place.
func (s Sequencer) Settle(ctx context.Context, state domain.FormState, dispatch DispatchFunc) (domain.FormState, error) {
	if state.Transition == domain.DirectionNone {
		return state, nil
	}
	if s.Duration > 0 {
		timer := time.NewTimer(s.Duration)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-timer.C:
		}
	}
	return dispatch(ctx, domain.ClearTransition{})
}

// Complete announces a finished survey through h.
func (s Sequencer) Complete(ctx context.Context, h IOHandler) error {
	if s.Format != nil {
		return h.SystemOutput(ctx, s.Format(CompletionTitle, CompletionMessage))
	}
	return h.SystemOutput(ctx, CompletionTitle+"\n"+CompletionMessage)
}
