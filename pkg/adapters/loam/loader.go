// Package loam loads a question catalog from a directory of documents.
//
// Each document is one question. Its frontmatter carries the question fields
// (id, type, position, required, placeholder, min_length, max_length,
// input_mode, rows) and its body is the question text:
//
//	---
//	type: phone
//	position: 6
//	placeholder: (555) 123-4567
//	---
//	Cell Phone Number
package loam

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"

	"github.com/steltz/stepper/pkg/catalog"
)

// Loader adapts a Loam repository to a catalog source.
type Loader struct {
	Repo *loam.TypedRepository[catalog.QuestionSpec]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[catalog.QuestionSpec]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only, strict Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode keeps numbers as json.Number across JSON and YAML documents.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[catalog.QuestionSpec](repo)), nil
}

// LoadCatalog is a convenience for Open followed by Load.
func LoadCatalog(ctx context.Context, dir string) (*catalog.Catalog, error) {
	l, err := Open(dir)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx)
}

// Specs lists the question specs in the repository, ordered by position and
// then by document ID.
func (l *Loader) Specs(ctx context.Context) ([]catalog.QuestionSpec, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	type entry struct {
		docID string
		spec  catalog.QuestionSpec
	}
	entries := make([]entry, 0, len(docs))
	seen := make(map[string]string)

	for _, listed := range docs {
		// List only carries cached metadata; the body needs a full read.
		doc, err := l.Repo.Get(ctx, listed.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load question '%s': %w", listed.ID, err)
		}

		spec := doc.Data
		if spec.ID == "" {
			spec.ID = trimExtension(listed.ID)
		}
		if spec.Text == "" {
			spec.Text = strings.TrimSpace(doc.Content)
		}

		if existing, ok := seen[spec.ID]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", spec.ID, existing, listed.ID)
		}
		seen[spec.ID] = listed.ID
		entries = append(entries, entry{docID: listed.ID, spec: spec})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Or(
			cmp.Compare(a.spec.Position, b.spec.Position),
			cmp.Compare(a.docID, b.docID),
		)
	})

	specs := make([]catalog.QuestionSpec, len(entries))
	for i, e := range entries {
		specs[i] = e.spec
	}
	return specs, nil
}

// Load builds a catalog from the repository.
func (l *Loader) Load(ctx context.Context) (*catalog.Catalog, error) {
	specs, err := l.Specs(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FromSpecs(specs)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
