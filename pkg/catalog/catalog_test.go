package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/steltz/stepper/pkg/catalog"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(id string, pos int) domain.Question {
	return domain.TextQuestion{Base: domain.Base{ID: id, Text: id, Position: pos, Required: true}}
}

func TestNew_Invariants(t *testing.T) {
	tests := []struct {
		name      string
		questions []domain.Question
		wantErr   bool
	}{
		{name: "Valid", questions: []domain.Question{text("a", 1), text("b", 2)}},
		{name: "Empty", questions: nil, wantErr: true},
		{name: "Duplicate id", questions: []domain.Question{text("a", 1), text("a", 2)}, wantErr: true},
		{name: "Empty id", questions: []domain.Question{text("", 1)}, wantErr: true},
		{name: "Blank text", questions: []domain.Question{domain.TextQuestion{Base: domain.Base{ID: "a", Text: "  ", Position: 1}}}, wantErr: true},
		{name: "Gap in positions", questions: []domain.Question{text("a", 1), text("b", 3)}, wantErr: true},
		{name: "Zero based", questions: []domain.Question{text("a", 0)}, wantErr: true},
		{name: "Nil question", questions: []domain.Question{nil}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := catalog.New(tt.questions...)
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.questions), c.Len())
		})
	}
}

func TestCatalog_QuestionAt(t *testing.T) {
	c := catalog.MustNew(text("a", 1), text("b", 2))

	q, err := c.QuestionAt(1)
	require.NoError(t, err)
	assert.Equal(t, "b", q.Common().ID)

	for _, i := range []int{-1, 2, 100} {
		_, err := c.QuestionAt(i)
		assert.ErrorIs(t, err, domain.ErrOutOfRange, "index %d", i)
	}

	idx, ok := c.IndexOf("b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, c.Last())
}

func TestCatalog_QuestionsIsACopy(t *testing.T) {
	c := catalog.MustNew(text("a", 1))
	qs := c.Questions()
	qs[0] = text("z", 1)

	q, _ := c.QuestionAt(0)
	assert.Equal(t, "a", q.Common().ID)
}

func TestDefault(t *testing.T) {
	c := catalog.Default()
	require.Equal(t, 6, c.Len())

	views := c.Views()
	assert.Equal(t, "card-location", views[0].ID)
	assert.Equal(t, domain.InputModeNumeric, views[1].InputMode)
	assert.Equal(t, domain.KindTextarea, views[2].Type)
	assert.Equal(t, domain.KindPhone, views[5].Type)
	for i, v := range views {
		assert.Equal(t, i+1, v.Position)
		assert.True(t, v.Required)
	}
}

func TestDecode(t *testing.T) {
	doc := []byte(`
questions:
  - id: q1
    type: text
    text: Say hello
    minLength: 3
    max_length: 10
  - id: q2
    type: yes-no
    text: Do you agree?
  - id: q3
    type: phone
    text: Phone
    placeholder: (555) 123-4567
  - id: q4
    type: textarea
    text: Notes
    rows: "6"
    required: false
`)

	c, err := catalog.Decode(doc)
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	q1, _ := c.QuestionAt(0)
	tq, ok := q1.(domain.TextQuestion)
	require.True(t, ok)
	assert.Equal(t, 3, tq.MinLength)
	assert.Equal(t, 10, tq.MaxLength)
	assert.True(t, tq.Required)

	q2, _ := c.QuestionAt(1)
	assert.Equal(t, domain.KindYesNo, q2.Kind())

	q4, _ := c.QuestionAt(3)
	ta, ok := q4.(domain.TextareaQuestion)
	require.True(t, ok)
	assert.Equal(t, 6, ta.Rows)
	assert.False(t, ta.Required)
	assert.Equal(t, 4, ta.Position)
}

func TestDecode_JSON(t *testing.T) {
	doc := []byte(`{"questions":[{"id":"a","type":"text","text":"A"},{"id":"b","type":"phone","text":"B"}]}`)
	c, err := catalog.Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown type":  "questions:\n  - id: a\n    type: slider\n",
		"unknown field": "questions:\n  - id: a\n    colour: red\n",
		"duplicate id":  "questions:\n  - id: a\n  - id: a\n",
		"no questions":  "questions: []\n",
		"bad yaml":      "questions: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Decode([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions:\n  - id: a\n    text: A\n"), 0o644))

	c, err := catalog.LoadFile(path)
	require.NoError(t, err)
	q, _ := c.QuestionAt(0)
	assert.Equal(t, domain.KindText, q.Kind())

	_, err = catalog.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
