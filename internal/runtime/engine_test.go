package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steltz/stepper/pkg/domain"
)

type recorder struct {
	steps     []*domain.StepEvent
	answers   []*domain.AnswerEvent
	completes []*domain.CompleteEvent
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) { r.steps = append(r.steps, e) },
		OnAnswer:    func(_ context.Context, e *domain.AnswerEvent) { r.answers = append(r.answers, e) },
		OnComplete:  func(_ context.Context, e *domain.CompleteEvent) { r.completes = append(r.completes, e) },
	}
}

func TestEngine_LifecycleHooks(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng := NewEngine(threeQuestions(),
		WithLifecycleHooks(rec.hooks()),
		WithClock(func() time.Time { return fixed }),
	)

	s := eng.Start(ctx)
	require.Len(t, rec.steps, 1)
	assert.Equal(t, "q1", rec.steps[0].QuestionID)
	assert.Equal(t, fixed, rec.steps[0].Timestamp)

	dispatch := func(a domain.Action) {
		t.Helper()
		var err error
		s, err = eng.Dispatch(ctx, s, a)
		require.NoError(t, err)
	}

	dispatch(domain.Back{}) // no-op
	assert.Len(t, rec.steps, 1)

	dispatch(domain.SetAnswer{Value: "hello"})
	dispatch(domain.SetAnswer{Value: "hello"}) // unchanged, no event
	require.Len(t, rec.answers, 1)
	assert.True(t, rec.answers[0].Valid)
	assert.Equal(t, domain.KindText, rec.answers[0].Kind)

	dispatch(domain.Next{})
	require.Len(t, rec.steps, 2)
	assert.Equal(t, domain.DirectionForward, rec.steps[1].Direction)
	assert.Equal(t, 1, rec.steps[1].Step)

	dispatch(domain.SetAnswer{Value: "No"})
	dispatch(domain.Next{})
	dispatch(domain.SetAnswer{Value: "+1 555 123 4567"})
	dispatch(domain.Submit{})
	dispatch(domain.Submit{})

	require.Len(t, rec.completes, 1)
	assert.Equal(t, 3, rec.completes[0].Answers)
	assert.Equal(t, domain.EventComplete, rec.completes[0].Type)
}

func TestEngine_DispatchUnknownAction(t *testing.T) {
	eng := NewEngine(threeQuestions())
	s0 := eng.Start(context.Background())
	s1, err := eng.Dispatch(context.Background(), s0, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
	assert.True(t, s0.Equal(s1))
}

func TestEngine_View(t *testing.T) {
	eng := NewEngine(threeQuestions())
	v, err := eng.View(eng.Start(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, 3, v.Progress.Total)
}
