package middleware

import (
	"context"
	"fmt"
	"maps"
	"regexp"

	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/ports"
)

// Mask replaces the value of a masked answer.
const Mask = "***"

type piiMiddleware struct {
	next     ports.CompletionSink
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks answers whose question ID
// matches one of the patterns.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.CompletionSink) ports.CompletionSink {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Submit(ctx context.Context, sub domain.Submission) error {
	// Clone so the caller's answers stay intact.
	sub.Answers = maps.Clone(sub.Answers)
	for id := range sub.Answers {
		for _, p := range m.patterns {
			if p.MatchString(id) {
				sub.Answers[id] = Mask
				break
			}
		}
	}
	return m.next.Submit(ctx, sub)
}

func (m *piiMiddleware) Get(ctx context.Context, id string) (domain.Submission, error) {
	return get(ctx, m.next, id)
}

func get(ctx context.Context, next ports.CompletionSink, id string) (domain.Submission, error) {
	reader, ok := next.(ports.SubmissionReader)
	if !ok {
		return domain.Submission{}, ErrNotReadable
	}
	return reader.Get(ctx, id)
}
