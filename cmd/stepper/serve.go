package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steltz/stepper/internal/cli"
)

var serveFlags = map[string]string{
	"http.port":       "port",
	"gate.enabled":    "gate",
	"gate.max_width":  "max-width",
	"sink.kind":       "sink",
	"sink.dir":        "sink-dir",
	"sink.redis_url":  "redis-url",
	"sink.sql_driver": "sql-driver",
	"sink.sql_dsn":    "sql-dsn",
	"session.ttl":     "session-ttl",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP JSON API",
	Long: `Serves survey sessions over a JSON API for a mobile web front-end. Requests
from wide viewports are refused unless the device gate is disabled.

Endpoints: /sessions, /catalog, /health, /info, /metrics, /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, serveFlags)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stack, err := cli.NewStack(ctx, cfg, cli.WithMetrics())
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTP.Port))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		stack.Logger.Info("serving catalog",
			"catalog", stack.Engine.Name,
			"questions", stack.Engine.Catalog().Len(),
			"gate", cfg.Gate.Enabled,
			"sink", cfg.Sink.Kind,
		)
		return cli.Serve(ctx, stack, ln)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("gate", true, "Refuse non-mobile devices")
	serveCmd.Flags().Int("max-width", 480, "Widest viewport (CSS px) treated as mobile")
	serveCmd.Flags().String("sink", "", "Completion sink: log, memory, file, redis, sql")
	serveCmd.Flags().String("sink-dir", "", "Directory of the file sink")
	serveCmd.Flags().String("redis-url", "", "Redis URL of the redis sink")
	serveCmd.Flags().String("sql-driver", "", "Driver of the sql sink: sqlite or postgres")
	serveCmd.Flags().String("sql-dsn", "", "DSN of the sql sink")
	serveCmd.Flags().Duration("session-ttl", 0, "Idle time before a session is discarded")
}
