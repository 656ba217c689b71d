package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/steltz/stepper/pkg/domain"
)

// Sink implements ports.CompletionSink using Redis.
// Each submission is stored as a JSON value, indexed in a sorted set by
// submission time and appended to a stream for downstream consumers.
type Sink struct {
	client *backend.Client
	prefix string
	maxLen int64
}

type Option func(*Sink)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// WithStreamMaxLen caps the stream length (approximate trimming). Zero keeps everything.
func WithStreamMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

// New creates a Redis sink from a redis:// URL.
func New(url string, opts ...Option) (*Sink, error) {
	options, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(options), opts...), nil
}

// NewFromClient creates a Redis sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	s := &Sink{
		client: client,
		prefix: "stepper:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) key(id string) string {
	return s.prefix + "submission:" + id
}

func (s *Sink) indexKey() string {
	return s.prefix + "submissions"
}

// StreamKey is the stream every submission is appended to.
func (s *Sink) StreamKey() string {
	return s.prefix + "submissions:stream"
}

// Submit stores the submission.
func (s *Sink) Submit(ctx context.Context, sub domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(sub.ID), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(sub.SubmittedAt.Unix()),
		Member: sub.ID,
	})
	pipe.XAdd(ctx, &backend.XAddArgs{
		Stream: s.StreamKey(),
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: map[string]any{
			"id":         sub.ID,
			"session_id": sub.SessionID,
			"payload":    string(data),
		},
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save submission to redis: %w", err)
	}
	return nil
}

// Get retrieves a submission by ID.
func (s *Sink) Get(ctx context.Context, id string) (domain.Submission, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var sub domain.Submission
	if err := json.Unmarshal([]byte(val), &sub); err != nil {
		return domain.Submission{}, fmt.Errorf("failed to unmarshal submission: %w", err)
	}
	if sub.Answers == nil {
		sub.Answers = map[string]string{}
	}
	return sub, nil
}

// List returns submission IDs ordered by submission time.
func (s *Sink) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return ids, nil
}

// Ping checks connectivity.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Sink) Close() error {
	return s.client.Close()
}
