package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/completion"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/ports"
)

// Engine is the state machine a Manager drives.
type Engine interface {
	Start(ctx context.Context) domain.FormState
	Dispatch(ctx context.Context, s domain.FormState, a domain.Action) (domain.FormState, error)
	View(s domain.FormState) (domain.View, error)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	engine   Engine
	store    ports.SessionStore
	notifier *completion.Notifier

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	newID  func() string
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithNotifier sets where completed sessions are delivered.
func WithNotifier(n *completion.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator overrides how session IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a new Session Manager over engine and store.
func NewManager(engine Engine, store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		engine: engine,
		store:  store,
		locks:  make(map[string]*lockEntry),
		newID:  uuid.NewString,
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = completion.NewNotifier(nil, completion.WithLogger(m.logger))
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a new session and returns its ID and initial state.
func (m *Manager) Create(ctx context.Context) (string, domain.FormState, error) {
	sessionID := m.newID()
	var state domain.FormState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state = m.engine.Start(ctx)
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", domain.FormState{}, err
	}
	m.logger.Debug("session created", "session_id", sessionID)
	return sessionID, state, nil
}

// Get returns the current state of a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (domain.FormState, error) {
	var state domain.FormState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// View returns the presentation model of a session.
func (m *Manager) View(ctx context.Context, sessionID string) (domain.View, error) {
	state, err := m.Get(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return m.engine.View(state)
}

// Render builds the presentation model of a state the caller already holds,
// such as the one Dispatch returned.
func (m *Manager) Render(state domain.FormState) (domain.View, error) {
	return m.engine.View(state)
}

// Dispatch applies an action to a session. When the action completes the
// form, the answers are handed to the notifier; its outcome never affects the
// returned state.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, action domain.Action) (domain.FormState, error) {
	var next domain.FormState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		prev, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, err = m.engine.Dispatch(ctx, prev, action)
		if err != nil {
			return err
		}
		if next.Equal(prev) {
			return nil
		}

		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		if !prev.IsComplete && next.IsComplete {
			if sub, ok := m.notifier.Notify(ctx, sessionID, next); ok {
				m.logger.Info("session completed",
					"session_id", sessionID,
					"submission_id", sub.ID,
				)
			}
		}
		return nil
	})
	return next, err
}

// Delete ends a session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return err
		}
		m.notifier.Forget(sessionID)
		return nil
	})
}

// Evicted forgets delivery records of sessions the store dropped on its own.
func (m *Manager) Evicted(sessionIDs []string) {
	for _, id := range sessionIDs {
		m.notifier.Forget(id)
	}
	m.logger.Debug("sessions evicted", "count", len(sessionIDs))
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Notifier returns the completion notifier.
func (m *Manager) Notifier() *completion.Notifier {
	return m.notifier
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
