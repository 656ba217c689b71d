package completion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/ports"
)

// DefaultTimeout bounds a single sink call.
const DefaultTimeout = 10 * time.Second

// ResultFunc observes the outcome of each delivery.
type ResultFunc func(sub domain.Submission, err error, elapsed time.Duration)

// Notifier hands completed forms to a sink exactly once per session.
type Notifier struct {
	sink     ports.CompletionSink
	logger   *slog.Logger
	timeout  time.Duration
	newID    func() string
	now      func() time.Time
	onResult ResultFunc

	wg       sync.WaitGroup
	mu       sync.Mutex
	notified map[string]struct{}
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithLogger configures a logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithTimeout bounds each sink call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithIDGenerator overrides how submission IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(n *Notifier) {
		if fn != nil {
			n.newID = fn
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// WithResultHook registers a callback run after every delivery attempt.
func WithResultHook(fn ResultFunc) Option {
	return func(n *Notifier) {
		n.onResult = fn
	}
}

// NewNotifier creates a notifier over sink. A nil sink logs submissions only.
func NewNotifier(sink ports.CompletionSink, opts ...Option) *Notifier {
	n := &Notifier{
		sink:     sink,
		logger:   logging.NewNop(),
		timeout:  DefaultTimeout,
		newID:    uuid.NewString,
		now:      time.Now,
		notified: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.sink == nil {
		n.sink = NewLogSink(n.logger)
	}
	return n
}

// Notify schedules delivery of a completed state. It returns the submission
// and true when a delivery was scheduled; incomplete states and sessions
// already delivered are ignored.
func (n *Notifier) Notify(ctx context.Context, sessionID string, state domain.FormState) (domain.Submission, bool) {
	if !state.IsComplete {
		return domain.Submission{}, false
	}

	n.mu.Lock()
	if _, done := n.notified[sessionID]; done {
		n.mu.Unlock()
		return domain.Submission{}, false
	}
	n.notified[sessionID] = struct{}{}
	n.mu.Unlock()

	sub := domain.NewSubmission(n.newID(), sessionID, state, n.now())

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(context.WithoutCancel(ctx), sub)
	}()
	return sub, true
}

func (n *Notifier) deliver(ctx context.Context, sub domain.Submission) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	err := n.submit(ctx, sub)
	elapsed := time.Since(start)

	if err != nil {
		n.logger.Error("completion sink failed",
			"submission_id", sub.ID,
			"session_id", sub.SessionID,
			"err", err,
		)
	} else {
		n.logger.Debug("submission delivered",
			"submission_id", sub.ID,
			"session_id", sub.SessionID,
			"duration", elapsed,
		)
	}
	if n.onResult != nil {
		n.onResult(sub, err, elapsed)
	}
}

// submit shields the caller from a panicking sink.
func (n *Notifier) submit(ctx context.Context, sub domain.Submission) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return n.sink.Submit(ctx, sub)
}

// Forget drops the delivery record of a session.
func (n *Notifier) Forget(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.notified, sessionID)
}

// Wait blocks until all scheduled deliveries finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
