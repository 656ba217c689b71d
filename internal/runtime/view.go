package runtime

import "github.com/steltz/stepper/pkg/domain"

// BuildView derives what a driver needs to render s.
func BuildView(c Catalog, s domain.FormState) (domain.View, error) {
	q, err := c.QuestionAt(s.CurrentStep)
	if err != nil {
		return domain.View{}, err
	}

	last := c.Len() - 1
	answer := s.Answer(q.Common().ID)
	v := domain.View{
		State:         s,
		Question:      domain.ViewOf(q),
		CurrentAnswer: answer,
		Progress:      domain.Progress{Current: s.CurrentStep + 1, Total: c.Len()},
		IsLast:        s.CurrentStep == last,
		CanGoBack:     !s.IsComplete && s.CurrentStep > 0,
		CanGoNext:     !s.IsComplete && s.Validation.Valid && s.CurrentStep < last,
		CanSubmit:     !s.IsComplete && s.Validation.Valid && s.CurrentStep == last,
	}
	// An error is only shown once something has been typed.
	if answer != "" {
		v.Error = s.Validation.Message
	}
	return v, nil
}
