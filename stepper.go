package stepper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/internal/runtime"
	loamAdapter "github.com/steltz/stepper/pkg/adapters/loam"
	"github.com/steltz/stepper/pkg/catalog"
	"github.com/steltz/stepper/pkg/domain"
)

// Engine is the high-level entry point for the stepper library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	catalog *catalog.Catalog
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	clock   func() time.Time
	Name    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCatalog injects a ready catalog, bypassing source loading.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// New initializes a new Engine.
// source names a catalog file (YAML or JSON) or a Loam directory of question
// documents. An empty source selects the built-in catalog. WithCatalog
// overrides source entirely.
func New(source string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.catalog == nil {
		c, err := LoadCatalog(context.Background(), source)
		if err != nil {
			return nil, err
		}
		eng.catalog = c
	}

	eng.Name = "default"
	if source != "" {
		eng.Name = filepath.Base(source)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	eng.logger = eng.logger.With("catalog", eng.Name)

	eng.runtime = runtime.NewEngine(eng.catalog,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithClock(eng.clock),
	)
	return eng, nil
}

// LoadCatalog resolves a catalog source: empty for the built-in catalog, a
// directory for a Loam repository, anything else for a catalog file.
func LoadCatalog(ctx context.Context, source string) (*catalog.Catalog, error) {
	if source == "" {
		return catalog.Default(), nil
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("catalog source: %w", err)
	}
	if info.IsDir() {
		return loamAdapter.LoadCatalog(ctx, source)
	}
	return catalog.LoadFile(source)
}

// Start returns the initial state of a new form and triggers lifecycle hooks.
func (e *Engine) Start(ctx context.Context) domain.FormState {
	return e.runtime.Start(ctx)
}

// Dispatch applies one action to a state and returns the next state.
func (e *Engine) Dispatch(ctx context.Context, state domain.FormState, action domain.Action) (domain.FormState, error) {
	return e.runtime.Dispatch(ctx, state, action)
}

// View derives the presentation model of a state.
func (e *Engine) View(state domain.FormState) (domain.View, error) {
	return e.runtime.View(state)
}

// Catalog returns the questions the engine runs over.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
