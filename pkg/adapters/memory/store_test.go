package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steltz/stepper/pkg/adapters/memory"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemorySink_Contract(t *testing.T) {
	ports.RunCompletionSinkContract(t, memory.NewSink())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := memory.NewStore(memory.WithTTL(time.Minute), memory.WithClock(clock.Now))

	require.NoError(t, store.Save(ctx, "a", domain.NewFormState()))
	require.NoError(t, store.Save(ctx, "b", domain.NewFormState()))

	clock.Advance(45 * time.Second)
	_, err := store.Load(ctx, "a") // touch refreshes expiry
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	_, err = store.Load(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, []string{"a"}, store.Sweep())
}

func TestMemoryStore_JanitorStopsOnCancel(t *testing.T) {
	store := memory.NewStore(memory.WithTTL(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Janitor(ctx, time.Millisecond, nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestMemorySink_Submissions(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewSink()
	require.NoError(t, sink.Submit(ctx, domain.Submission{ID: "1", Answers: map[string]string{"q": "a"}}))
	require.NoError(t, sink.Submit(ctx, domain.Submission{ID: "2"}))

	subs := sink.Submissions()
	require.Len(t, subs, 2)
	assert.Equal(t, "1", subs[0].ID)
	assert.Equal(t, "2", subs[1].ID)

	subs[0].Answers["q"] = "mutated"
	again, err := sink.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Answers["q"])
}
