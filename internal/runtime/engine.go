package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/domain"
)

// Catalog is the read-only view of the question list the engine needs.
type Catalog interface {
	QuestionAt(i int) (domain.Question, error)
	Len() int
}

// Engine wraps the pure reducer with logging and lifecycle hooks.
// It holds no session state and is safe for concurrent use.
type Engine struct {
	catalog Catalog
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	now     func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine over the given catalog.
func NewEngine(catalog Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine runs over.
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// Start returns the initial state of a new session.
func (e *Engine) Start(ctx context.Context) domain.FormState {
	s := domain.NewFormState()
	if q, err := e.catalog.QuestionAt(0); err == nil {
		e.emitStepEnter(ctx, s, q)
	}
	return s
}

// Dispatch applies one action and returns the next state.
// A no-op action returns the input state unchanged and emits no event.
func (e *Engine) Dispatch(ctx context.Context, s domain.FormState, a domain.Action) (domain.FormState, error) {
	next, err := Reduce(e.catalog, s, a)
	if err != nil {
		e.logger.Error("transition failed", "step", s.CurrentStep, "err", err)
		return s, err
	}

	changed := !next.Equal(s)
	e.logger.Debug("transition",
		"action", a.Type(),
		"step", next.CurrentStep,
		"valid", next.Validation.Valid,
		"complete", next.IsComplete,
		"changed", changed,
	)
	if !changed {
		return next, nil
	}

	switch a.(type) {
	case domain.SetAnswer:
		if q, err := e.catalog.QuestionAt(next.CurrentStep); err == nil {
			e.emitAnswer(ctx, next, q)
		}
	case domain.Next, domain.Back:
		if next.CurrentStep != s.CurrentStep {
			if q, err := e.catalog.QuestionAt(next.CurrentStep); err == nil {
				e.emitStepEnter(ctx, next, q)
			}
		}
	case domain.Submit:
		if next.IsComplete && !s.IsComplete {
			e.emitComplete(ctx, next)
		}
	}
	return next, nil
}

// View derives the presentation model of a state.
func (e *Engine) View(s domain.FormState) (domain.View, error) {
	return BuildView(e.catalog, s)
}

func (e *Engine) emitStepEnter(ctx context.Context, s domain.FormState, q domain.Question) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase:  domain.EventBase{Timestamp: e.now(), Type: domain.EventStepEnter},
		Step:       s.CurrentStep,
		QuestionID: q.Common().ID,
		Direction:  s.Transition,
	})
}

func (e *Engine) emitAnswer(ctx context.Context, s domain.FormState, q domain.Question) {
	if e.hooks.OnAnswer == nil {
		return
	}
	e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
		EventBase:  domain.EventBase{Timestamp: e.now(), Type: domain.EventAnswer},
		QuestionID: q.Common().ID,
		Kind:       q.Kind(),
		Valid:      s.Validation.Valid,
	})
}

func (e *Engine) emitComplete(ctx context.Context, s domain.FormState) {
	if e.hooks.OnComplete == nil {
		return
	}
	e.hooks.OnComplete(ctx, &domain.CompleteEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventComplete},
		Answers:   len(s.Answers),
	})
}
