package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steltz/stepper/internal/adapters/file"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/ports"
)

func TestFileSink_Contract(t *testing.T) {
	ports.RunCompletionSinkContract(t, file.New(t.TempDir()))
}

func TestFileSink_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	sink := file.New(dir)
	ctx := context.Background()

	require.NoError(t, sink.Submit(ctx, domain.Submission{ID: "a", Answers: map[string]string{"q": "1"}}))
	require.NoError(t, sink.Submit(ctx, domain.Submission{ID: "a", Answers: map[string]string{"q": "2"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())

	got, err := sink.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", got.Answers["q"])

	ids, err := sink.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestFileSink_RejectsUnsafeIDs(t *testing.T) {
	dir := t.TempDir()
	sink := file.New(filepath.Join(dir, "subs"))
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		assert.Error(t, sink.Submit(ctx, domain.Submission{ID: id}), "id %q", id)
	}
	_, err := os.Stat(filepath.Join(dir, "escape.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileSink_ListMissingDir(t *testing.T) {
	sink := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := sink.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
