package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/steltz/stepper/pkg/adapters/http"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// NewHTTPHandler builds the JSON API over the stack.
func NewHTTPHandler(s *Stack) http.Handler {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(s.Logger),
		httpAdapter.WithCatalog(s.Engine.Catalog().Views()),
	}
	if s.Config.Gate.Enabled {
		gate := &httpAdapter.Gate{MaxWidth: s.Config.Gate.MaxWidth}
		if s.Metrics != nil {
			gate.OnReject = func(*http.Request) { s.Metrics.GateRejections.Inc() }
		}
		opts = append(opts, httpAdapter.WithGate(gate))
	} else {
		opts = append(opts, httpAdapter.WithGate(nil))
	}
	if s.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(s.Metrics.Handler()))
	}
	return httpAdapter.NewHandler(s.Sessions, opts...)
}

// Serve runs the HTTP API on ln until ctx is done, then shuts down
// gracefully and drains pending submissions.
func Serve(ctx context.Context, s *Stack, ln net.Listener) error {
	srv := &http.Server{
		Handler:           NewHTTPHandler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	s.StartJanitor(janitorCtx)

	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("stepper server listening", "address", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.Logger.Info("shutdown signal received, stopping server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Error("graceful shutdown did not complete", "err", err)
			_ = srv.Close()
		}
		if err := s.Close(shutdownCtx); err != nil {
			return err
		}
		s.Logger.Info("stepper server stopped gracefully")
		return nil
	}
}
