package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steltz/stepper/internal/adapters/file"
	"github.com/steltz/stepper/internal/adapters/redis"
	"github.com/steltz/stepper/internal/adapters/sqldb"
	"github.com/steltz/stepper/internal/config"
	"github.com/steltz/stepper/internal/logging"
	"github.com/steltz/stepper/pkg/completion"
	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/persistence/middleware"
	"github.com/steltz/stepper/pkg/ports"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log:        config.LogConfig{Level: "error", Format: "text"},
		HTTP:       config.HTTPConfig{Port: 0},
		Gate:       config.GateConfig{Enabled: true, MaxWidth: 480},
		Transition: config.TransitionConfig{Duration: 0},
		Session:    config.SessionConfig{TTL: time.Minute, SweepInterval: time.Second},
		Sink: config.SinkConfig{
			Kind:    config.SinkFile,
			Dir:     t.TempDir(),
			Timeout: time.Second,
		},
	}
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("log", func(t *testing.T) {
		sink, closer, err := NewSink(ctx, config.SinkConfig{Kind: config.SinkLog}, logger)
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.IsType(t, &completion.LogSink{}, sink)
	})

	t.Run("memory", func(t *testing.T) {
		sink, _, err := NewSink(ctx, config.SinkConfig{Kind: config.SinkMemory}, logger)
		require.NoError(t, err)
		assert.IsType(t, completion.Multi{}, sink)
	})

	t.Run("file", func(t *testing.T) {
		sink, _, err := NewSink(ctx, config.SinkConfig{Kind: config.SinkFile, Dir: t.TempDir()}, logger)
		require.NoError(t, err)
		assert.IsType(t, &file.Sink{}, sink)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		sink, closer, err := NewSink(ctx, config.SinkConfig{Kind: config.SinkRedis, RedisURL: "redis://" + mr.Addr()}, logger)
		require.NoError(t, err)
		require.NotNil(t, closer)
		defer closer()
		assert.IsType(t, &redis.Sink{}, sink)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, _, err := NewSink(ctx, config.SinkConfig{Kind: config.SinkRedis, RedisURL: "redis://" + addr}, logger)
		assert.Error(t, err)
	})

	t.Run("sql", func(t *testing.T) {
		dsn := filepath.Join(t.TempDir(), "submissions.db")
		sink, closer, err := NewSink(ctx, config.SinkConfig{Kind: config.SinkSQL, SQLDriver: sqldb.DriverSQLite, SQLDSN: dsn}, logger)
		require.NoError(t, err)
		require.NotNil(t, closer)
		defer closer()
		assert.IsType(t, &sqldb.Sink{}, sink)
	})

	t.Run("masked and encrypted file", func(t *testing.T) {
		dir := t.TempDir()
		key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
		cfg := config.SinkConfig{Kind: config.SinkFile, Dir: dir, Mask: []string{"phone"}, EncryptionKey: key}
		sink, _, err := NewSink(ctx, cfg, logger)
		require.NoError(t, err)

		sub := domain.Submission{ID: "enc", Answers: map[string]string{"phone": "555-123-4567", "q": "a"}}
		require.NoError(t, sink.Submit(ctx, sub))

		raw, err := file.New(dir).Get(ctx, "enc")
		require.NoError(t, err)
		assert.Contains(t, raw.Answers, middleware.EnvelopeKey)

		got, err := sink.(ports.SubmissionReader).Get(ctx, "enc")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"phone": middleware.Mask, "q": "a"}, got.Answers)
	})

	t.Run("bad mask", func(t *testing.T) {
		_, _, err := NewSink(ctx, config.SinkConfig{Kind: config.SinkLog, Mask: []string{"("}}, logger)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := NewSink(ctx, config.SinkConfig{Kind: "kafka"}, logger)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestNewStack_DeliversToConfiguredSink(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	s, err := NewStack(ctx, cfg, WithMetrics(), WithStackLogger(logging.NewNop()))
	require.NoError(t, err)
	require.NotNil(t, s.Metrics)

	id, _, err := s.Sessions.Create(ctx)
	require.NoError(t, err)

	// Walk the default catalog with valid answers.
	answers := map[string]string{}
	c := s.Engine.Catalog()
	for i := 0; i < c.Len(); i++ {
		q, err := c.QuestionAt(i)
		require.NoError(t, err)
		value := "Something"
		switch q.Kind() {
		case domain.KindYesNo:
			value = "Yes"
		case domain.KindPhone:
			value = "555-123-4567"
		}
		answers[q.Common().ID] = value

		_, err = s.Sessions.Dispatch(ctx, id, domain.SetAnswer{Value: value})
		require.NoError(t, err)
		if i < c.Last() {
			_, err = s.Sessions.Dispatch(ctx, id, domain.Next{})
		} else {
			_, err = s.Sessions.Dispatch(ctx, id, domain.Submit{})
		}
		require.NoError(t, err)
	}

	require.NoError(t, s.Close(ctx))

	ids, err := file.New(cfg.Sink.Dir).List(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	sub, err := file.New(cfg.Sink.Dir).Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, id, sub.SessionID)
	assert.Equal(t, answers, sub.Answers)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	assert.NoError(t, err)
	_, err = NewLogger(config.LogConfig{Level: "loud", Format: "text"})
	assert.Error(t, err)
}
