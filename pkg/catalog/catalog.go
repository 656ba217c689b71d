// Package catalog holds the ordered, immutable list of survey questions.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/steltz/stepper/pkg/domain"
)

// ErrInvalidCatalog is returned when a question list breaks a catalog invariant.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is an ordered list of questions. It is safe for concurrent use
// because it is never mutated after New returns.
type Catalog struct {
	questions []domain.Question
	index     map[string]int
}

// New validates and copies the given questions. Ids must be unique and non
// empty, every question needs display text, and positions must run 1, 2, 3...
// in order.
func New(questions ...domain.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidCatalog)
	}

	c := &Catalog{
		questions: make([]domain.Question, len(questions)),
		index:     make(map[string]int, len(questions)),
	}

	var errs []error
	for i, q := range questions {
		if q == nil {
			errs = append(errs, fmt.Errorf("question %d is nil", i))
			continue
		}
		base := q.Common()
		if base.ID == "" {
			errs = append(errs, fmt.Errorf("question %d has an empty id", i))
		} else if prev, dup := c.index[base.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate id %q at %d and %d", base.ID, prev, i))
		} else {
			c.index[base.ID] = i
		}
		if strings.TrimSpace(base.Text) == "" {
			errs = append(errs, fmt.Errorf("question %q has no text", base.ID))
		}
		if base.Position != i+1 {
			errs = append(errs, fmt.Errorf("question %q has position %d, expected %d", base.ID, base.Position, i+1))
		}
		c.questions[i] = q
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for package-level catalogs.
func MustNew(questions ...domain.Question) *Catalog {
	c, err := New(questions...)
	if err != nil {
		panic(err)
	}
	return c
}

// QuestionAt returns the question at the 0-based index i.
func (c *Catalog) QuestionAt(i int) (domain.Question, error) {
	if i < 0 || i >= len(c.questions) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", domain.ErrOutOfRange, i, len(c.questions))
	}
	return c.questions[i], nil
}

// Len is the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Last is the index of the final question.
func (c *Catalog) Last() int {
	return len(c.questions) - 1
}

// IndexOf returns the index of the question with the given id.
func (c *Catalog) IndexOf(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Questions returns a copy of the question list.
func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Views flattens every question for serialization.
func (c *Catalog) Views() []domain.QuestionView {
	out := make([]domain.QuestionView, len(c.questions))
	for i, q := range c.questions {
		out[i] = domain.ViewOf(q)
	}
	return out
}
