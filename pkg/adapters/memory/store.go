package memory

import (
	"context"
	"sync"
	"time"

	"github.com/steltz/stepper/pkg/domain"
)

type entry struct {
	state    domain.FormState
	lastSeen time.Time
}

// Store implements ports.SessionStore in memory.
// Safe for concurrent use. Sessions idle for longer than the TTL are evicted.
type Store struct {
	data map[string]*entry
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL evicts sessions not touched for d. Zero disables eviction.
func WithTTL(d time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = d
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		data: make(map[string]*entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a private copy of the state.
func (s *Store) Save(ctx context.Context, sessionID string, state domain.FormState) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = &entry{state: copied, lastSeen: s.now()}
	return nil
}

// Load retrieves a copy of the state and refreshes its expiry.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[sessionID]
	if !ok || s.expired(e) {
		delete(s.data, sessionID)
		return domain.FormState{}, domain.ErrSessionNotFound
	}
	e.lastSeen = s.now()

	// Copy on read so callers can't mutate store state through the map
	return e.state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns live sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if s.expired(e) {
			continue
		}
		sessions = append(sessions, id)
	}
	return sessions, nil
}

// Sweep drops expired sessions and returns their IDs.
func (s *Store) Sweep() []string {
	if s.ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, e := range s.data {
		if s.expired(e) {
			delete(s.data, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Janitor runs Sweep every interval until ctx is done. onEvict, if set, is
// called with each batch of evicted IDs.
func (s *Store) Janitor(ctx context.Context, interval time.Duration, onEvict func([]string)) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids := s.Sweep(); len(ids) > 0 && onEvict != nil {
				onEvict(ids)
			}
		}
	}
}

func (s *Store) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl
}
