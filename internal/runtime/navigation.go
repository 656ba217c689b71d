package runtime

import (
	"fmt"

	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/validation"
)

// Reduce is the transition function of the stepper. It never mutates s; a
// state it changes is returned as a fresh copy, a no-op returns s itself.
func Reduce(c Catalog, s domain.FormState, a domain.Action) (domain.FormState, error) {
	last := c.Len() - 1

	switch a := a.(type) {
	case domain.SetAnswer:
		if s.IsComplete {
			return s, nil
		}
		q, err := c.QuestionAt(s.CurrentStep)
		if err != nil {
			return s, err
		}
		next := s.Clone()
		next.Answers[q.Common().ID] = a.Value
		next.Validation = validation.ValidateAnswer(a.Value, q)
		return next, nil

	case domain.Next:
		if s.IsComplete || s.CurrentStep >= last {
			return s, nil
		}
		return moveTo(c, s, s.CurrentStep+1, domain.DirectionForward)

	case domain.Back:
		if s.IsComplete || s.CurrentStep <= 0 {
			return s, nil
		}
		return moveTo(c, s, s.CurrentStep-1, domain.DirectionBackward)

	case domain.Submit:
		if s.IsComplete || s.CurrentStep != last || !s.Validation.Valid {
			return s, nil
		}
		next := s.Clone()
		next.IsComplete = true
		next.Transition = domain.DirectionForward
		return next, nil

	case domain.ClearTransition:
		next := s.Clone()
		next.Transition = domain.DirectionNone
		return next, nil

	default:
		return s, fmt.Errorf("%w: %T", domain.ErrUnknownAction, a)
	}
}

// moveTo changes the current step and revalidates the stored answer of the
// new question. A blank stored answer yields the untouched verdict.
func moveTo(c Catalog, s domain.FormState, step int, dir domain.Direction) (domain.FormState, error) {
	q, err := c.QuestionAt(step)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.CurrentStep = step
	next.Transition = dir
	next.Validation = revalidate(next, q)
	return next, nil
}

func revalidate(s domain.FormState, q domain.Question) domain.ValidationResult {
	stored := s.Answer(q.Common().ID)
	if stored == "" {
		return domain.Untouched()
	}
	return validation.ValidateAnswer(stored, q)
}
