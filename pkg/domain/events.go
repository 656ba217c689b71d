package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter EventType = "step_enter"
	EventAnswer    EventType = "answer"
	EventComplete  EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent is emitted when a Next or Back changes the current question.
type StepEvent struct {
	EventBase
	Step       int       `json:"step"`
	QuestionID string    `json:"question_id"`
	Direction  Direction `json:"direction"`
}

// AnswerEvent is emitted after SetAnswer.
type AnswerEvent struct {
	EventBase
	QuestionID string       `json:"question_id"`
	Kind       QuestionKind `json:"kind"`
	Valid      bool         `json:"valid"`
}

// CompleteEvent is emitted once, on the transition to IsComplete.
type CompleteEvent struct {
	EventBase
	Answers int `json:"answers"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnAnswer    func(context.Context, *AnswerEvent)
	OnComplete  func(context.Context, *CompleteEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter: chain(h.OnStepEnter, other.OnStepEnter),
		OnAnswer:    chain(h.OnAnswer, other.OnAnswer),
		OnComplete:  chain(h.OnComplete, other.OnComplete),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
