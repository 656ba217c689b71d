package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/steltz/stepper"
	"github.com/steltz/stepper/internal/adapters/file"
	"github.com/steltz/stepper/internal/adapters/redis"
	"github.com/steltz/stepper/internal/adapters/sqldb"
	"github.com/steltz/stepper/internal/config"
	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/adapters/memory"
	"github.com/steltz/stepper/pkg/completion"
	"github.com/steltz/stepper/pkg/observability"
	"github.com/steltz/stepper/pkg/persistence/middleware"
	"github.com/steltz/stepper/pkg/ports"
	"github.com/steltz/stepper/pkg/session"
)

// Stack is the hosting stack shared by the run, serve and mcp commands.
type Stack struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *stepper.Engine
	Store    *memory.Store
	Sessions *session.Manager
	Notifier *completion.Notifier
	Metrics  *observability.Metrics

	closers []func() error
}

// StackOption configures NewStack.
type StackOption func(*stackOptions)

type stackOptions struct {
	metrics bool
	logger  *slog.Logger
}

// WithMetrics registers Prometheus collectors and binds them to the engine
// hooks and the notifier.
func WithMetrics() StackOption {
	return func(o *stackOptions) {
		o.metrics = true
	}
}

// WithStackLogger overrides the logger derived from configuration.
func WithStackLogger(logger *slog.Logger) StackOption {
	return func(o *stackOptions) {
		o.logger = logger
	}
}

// NewLogger builds the logger described by cfg, writing to stderr.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, level, format), nil
}

// NewStack builds every component from cfg. Call Close when done.
func NewStack(ctx context.Context, cfg *config.Config, opts ...StackOption) (*Stack, error) {
	o := &stackOptions{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(cfg.Log); err != nil {
			return nil, err
		}
	}

	s := &Stack{Config: cfg, Logger: logger}

	hooks := observability.LoggingHooks(logger)
	notifierOpts := []completion.Option{
		completion.WithLogger(logger),
		completion.WithTimeout(cfg.Sink.Timeout),
	}
	if o.metrics {
		s.Metrics = observability.NewMetrics()
		hooks = hooks.Merge(s.Metrics.Hooks())
		notifierOpts = append(notifierOpts, completion.WithResultHook(s.Metrics.ObserveDelivery))
	}

	engine, err := stepper.New(cfg.Catalog,
		stepper.WithLogger(logger),
		stepper.WithLifecycleHooks(hooks),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	s.Engine = engine

	sink, closer, err := NewSink(ctx, cfg.Sink, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	s.Notifier = completion.NewNotifier(sink, notifierOpts...)
	s.Store = memory.NewStore(memory.WithTTL(cfg.Session.TTL))
	s.Sessions = session.NewManager(engine, s.Store,
		session.WithNotifier(s.Notifier),
		session.WithLogger(logger),
	)

	logger.Debug("stack ready",
		"catalog", engine.Name,
		"questions", engine.Catalog().Len(),
		"sink", cfg.Sink.Kind,
	)
	return s, nil
}

// StartJanitor evicts idle sessions in the background until ctx is done.
func (s *Stack) StartJanitor(ctx context.Context) {
	go s.Store.Janitor(ctx, s.Config.Session.SweepInterval, func(ids []string) {
		s.Logger.Info("sessions expired", "count", len(ids))
		s.Sessions.Evicted(ids)
	})
}

// Close drains pending deliveries and releases sink connections.
func (s *Stack) Close(ctx context.Context) error {
	var errs []error
	if err := s.Notifier.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("pending submissions not delivered: %w", err))
	}
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewSink selects the completion sink named by cfg.Kind and wraps it with the
// masking and encryption middleware cfg asks for. The returned closer may be nil.
func NewSink(ctx context.Context, cfg config.SinkConfig, logger *slog.Logger) (ports.CompletionSink, func() error, error) {
	var mws []middleware.Middleware
	if len(cfg.Mask) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.Mask)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		mws = append(mws, mw)
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, mw)
	}

	sink, closer, err := newBaseSink(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(sink, mws...), closer, nil
}

func newBaseSink(ctx context.Context, cfg config.SinkConfig, logger *slog.Logger) (ports.CompletionSink, func() error, error) {
	switch cfg.Kind {
	case config.SinkLog, "":
		return completion.NewLogSink(logger), nil, nil

	case config.SinkMemory:
		return completion.Multi{memory.NewSink(), completion.NewLogSink(logger)}, nil, nil

	case config.SinkFile:
		return file.New(cfg.Dir), nil, nil

	case config.SinkRedis:
		sink, err := redis.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure redis sink: %w", err)
		}
		if err := sink.Ping(ctx); err != nil {
			_ = sink.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return sink, sink.Close, nil

	case config.SinkSQL:
		sink, err := sqldb.Open(ctx, cfg.SQLDriver, cfg.SQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown sink.kind %q", config.ErrInvalidConfig, cfg.Kind)
}
