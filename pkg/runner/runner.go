package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/domain"
)

// Host owns survey sessions. session.Manager satisfies it.
type Host interface {
	Create(ctx context.Context) (string, domain.FormState, error)
	Dispatch(ctx context.Context, sessionID string, action domain.Action) (domain.FormState, error)
	View(ctx context.Context, sessionID string) (domain.View, error)
}

// Result is the outcome of an interactive run.
type Result struct {
	SessionID string
	State     domain.FormState
	// Quit is set when the user left before submitting.
	Quit bool
}

// Runner handles the interaction loop of one survey session using the
// provided IOHandler.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdio.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Sequencer plays transitions between questions.
	Sequencer Sequencer

	// SessionID resumes an existing session when set.
	SessionID string
}

// NewRunner creates a Runner with a text handler on Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:    logging.NewNop(),
		Sequencer: Sequencer{Duration: DefaultTransitionDuration},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run drives one session until it is submitted, the user quits, input ends
// or ctx is cancelled. Each line the user enters becomes a SetAnswer,
// followed by Next (or Submit on the last question) when the answer is valid.
func (r *Runner) Run(ctx context.Context, host Host) (Result, error) {
	signals := NewSignalManager(ctx)
	defer signals.Stop()
	ctx = signals.Context()

	res := Result{SessionID: r.SessionID}
	if res.SessionID == "" {
		id, state, err := host.Create(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to create session: %w", err)
		}
		res.SessionID, res.State = id, state
	}
	r.Logger.Debug("runner started", "session_id", res.SessionID)

	dispatch := func(ctx context.Context, a domain.Action) (domain.FormState, error) {
		return host.Dispatch(ctx, res.SessionID, a)
	}

	for {
		view, err := host.View(ctx, res.SessionID)
		if err != nil {
			return res, fmt.Errorf("view error: %w", err)
		}
		res.State = view.State

		if view.State.IsComplete {
			return res, r.Sequencer.Complete(ctx, r.Handler)
		}

		if err := r.Handler.Output(ctx, view); err != nil {
			return res, fmt.Errorf("output error: %w", err)
		}

		input, err := r.Handler.Input(ctx, view)
		if err != nil {
			signals.CheckRace()
			switch {
			case signals.Interrupted():
				r.Logger.Debug("runner interrupted", "session_id", res.SessionID)
				res.Quit = true
				return res, ctx.Err()
			case errors.Is(err, io.EOF), errors.Is(err, ErrAborted):
				res.Quit = true
				return res, nil
			}
			return res, fmt.Errorf("input error: %w", err)
		}

		cmd := ParseCommand(input)
		var next domain.FormState
		switch cmd.Kind {
		case CommandExit:
			res.Quit = true
			_ = r.Handler.SystemOutput(ctx, "Survey closed. Your answers were not submitted.")
			return res, nil
		case CommandGoBack:
			next, err = dispatch(ctx, domain.Back{})
		default:
			next, err = r.answer(ctx, view, cmd.Value, dispatch)
		}
		if err != nil {
			return res, err
		}

		if next, err = r.Sequencer.Settle(ctx, next, dispatch); err != nil {
			res.State = next
			return res, err
		}
		res.State = next
	}
}

// answer stores value and advances when the answer is accepted. An empty line
// keeps the answer already stored for the question.
func (r *Runner) answer(ctx context.Context, view domain.View, value string, dispatch DispatchFunc) (domain.FormState, error) {
	if strings.TrimSpace(value) == "" && view.CurrentAnswer != "" {
		value = view.CurrentAnswer
	}
	value = matchOption(view.Question.Options, value)
	state, err := dispatch(ctx, domain.SetAnswer{Value: value})
	if err != nil {
		return state, err
	}
	if !state.Validation.Valid {
		if state.Validation.Message != "" && strings.TrimSpace(value) == "" {
			_ = r.Handler.SystemOutput(ctx, "! "+state.Validation.Message)
		}
		return state, nil
	}
	if view.IsLast {
		r.Logger.Debug("submitting", "answers", len(state.Answers))
		return dispatch(ctx, domain.Submit{})
	}
	return dispatch(ctx, domain.Next{})
}

// matchOption maps typed input such as "yes" onto the option it names.
func matchOption(options []string, value string) string {
	for _, opt := range options {
		if strings.EqualFold(opt, strings.TrimSpace(value)) {
			return opt
		}
	}
	return value
}
