package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steltz/stepper/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewFormState()
		state.CurrentStep = 1
		state.Answers["q1"] = "hello"
		state.Validation = domain.Invalid("Please select an option")
		state.Transition = domain.DirectionForward

		require.NoError(t, store.Save(ctx, sessionID, state), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, state.Equal(loaded), "loaded state differs: %+v", loaded)
	})

	t.Run("Stored state is isolated", func(t *testing.T) {
		state := domain.NewFormState()
		state.Answers["q1"] = "before"
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Answers["q1"] = "after"
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "before", loaded.Answer("q1"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewFormState()))
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewFormState())
		_ = store.Save(ctx, id2, domain.NewFormState())
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunCompletionSinkContract verifies that a sink stores what it is given and
// can read it back.
func RunCompletionSinkContract(t *testing.T, sink DurableSink) {
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("Submit and Get", func(t *testing.T) {
		sub := domain.Submission{
			ID:          "contract-sub-1",
			SessionID:   "contract-session",
			Answers:     map[string]string{"q1": "hello", "q2": "Yes", "q3": "555-123-4567"},
			SubmittedAt: at,
		}
		require.NoError(t, sink.Submit(ctx, sub))

		got, err := sink.Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)
		assert.Equal(t, sub.SessionID, got.SessionID)
		assert.Equal(t, sub.Answers, got.Answers)
		assert.True(t, sub.SubmittedAt.Equal(got.SubmittedAt), "submitted_at %v != %v", got.SubmittedAt, sub.SubmittedAt)
	})

	t.Run("Empty answers", func(t *testing.T) {
		sub := domain.Submission{ID: "contract-sub-2", SessionID: "s2", Answers: map[string]string{}, SubmittedAt: at}
		require.NoError(t, sink.Submit(ctx, sub))

		got, err := sink.Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Answers)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := sink.Get(ctx, "contract-missing")
		assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	})
}
