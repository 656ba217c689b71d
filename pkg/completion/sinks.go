package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/ports"
)

// PanicError wraps a value recovered from a panicking sink.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("sink panicked: %v", e.Value)
}

// LogSink writes each submission to a logger. It never fails.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that only logs.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Submit(ctx context.Context, sub domain.Submission) error {
	s.logger.InfoContext(ctx, "submission received",
		"submission_id", sub.ID,
		"session_id", sub.SessionID,
		"answers", len(sub.Answers),
	)
	return nil
}

// Multi fans a submission out to several sinks. Every sink is called; their
// errors are joined.
type Multi []ports.CompletionSink

func (m Multi) Submit(ctx context.Context, sub domain.Submission) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Submit(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
