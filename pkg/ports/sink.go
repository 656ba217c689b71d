package ports

import (
	"context"

	"github.com/steltz/stepper/pkg/domain"
)

// CompletionSink receives the final answers of a completed session.
// Callers never feed its error back into form state.
type CompletionSink interface {
	Submit(ctx context.Context, sub domain.Submission) error
}

// CompletionSinkFunc adapts a function to CompletionSink.
type CompletionSinkFunc func(ctx context.Context, sub domain.Submission) error

func (f CompletionSinkFunc) Submit(ctx context.Context, sub domain.Submission) error {
	return f(ctx, sub)
}

// SubmissionReader looks up a stored submission by its ID.
// Returns domain.ErrSubmissionNotFound if it does not exist.
type SubmissionReader interface {
	Get(ctx context.Context, id string) (domain.Submission, error)
}

// DurableSink is a sink whose submissions can be read back.
type DurableSink interface {
	CompletionSink
	SubmissionReader
}
