package runner

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithTransitionDuration sets how long a step change stays visible before it
// is acknowledged. Zero clears transitions immediately.
func WithTransitionDuration(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.Sequencer.Duration = d
		}
	}
}

// WithSessionID resumes an existing session instead of creating one.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithCompletionFormat styles the message shown after submission.
func WithCompletionFormat(format func(title, message string) string) Option {
	return func(r *Runner) {
		r.Sequencer.Format = format
	}
}
