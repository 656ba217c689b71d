package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/steltz/stepper/pkg/domain"
)

// Sink records submissions in memory. Useful for tests and local runs.
type Sink struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Submission
}

// NewSink creates an empty recording sink.
func NewSink() *Sink {
	return &Sink{byID: make(map[string]domain.Submission)}
}

func (s *Sink) Submit(ctx context.Context, sub domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sub.Answers = maps.Clone(sub.Answers)
	if sub.Answers == nil {
		sub.Answers = map[string]string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[sub.ID]; !exists {
		s.order = append(s.order, sub.ID)
	}
	s.byID[sub.ID] = sub
	return nil
}

func (s *Sink) Get(ctx context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	sub.Answers = maps.Clone(sub.Answers)
	return sub, nil
}

// Submissions returns everything received, oldest first.
func (s *Sink) Submissions() []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0, len(s.order))
	for _, id := range s.order {
		sub := s.byID[id]
		sub.Answers = maps.Clone(sub.Answers)
		out = append(out, sub)
	}
	return out
}
