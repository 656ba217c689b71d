package observability

import (
	"context"
	"log/slog"

	"github.com/steltz/stepper/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write one structured record per event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter",
				"step", e.Step,
				"question_id", e.QuestionID,
				"direction", e.Direction,
			)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.DebugContext(ctx, "answer",
				"question_id", e.QuestionID,
				"kind", e.Kind,
				"valid", e.Valid,
			)
		},
		OnComplete: func(ctx context.Context, e *domain.CompleteEvent) {
			logger.InfoContext(ctx, "form_complete", "answers", e.Answers)
		},
	}
}
