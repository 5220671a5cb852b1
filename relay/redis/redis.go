// Package redis provides a Redis Streams relay sink.
//
// Every subject maps to one stream; envelopes are XAdd'ed in fire order, so
// consumers can replay a change feed with XRead/XReadGroup and pick up
// where they left off. Use WithMaxLen to cap stream growth.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Sink errors
var (
	ErrClientRequired = errors.New("redis client is required")
	ErrSinkClosed     = errors.New("redis sink closed")
)

// DefaultStreamPrefix is prepended to subjects to form stream keys.
var DefaultStreamPrefix = "observe:"

// payloadField is the stream entry field holding the encoded envelope.
const payloadField = "data"

// Sink appends envelopes to Redis streams.
//
// The sink does not own the client; Close only stops the sink.
type Sink struct {
	closed int32
	client redis.UniversalClient
	logger *slog.Logger
	prefix string
	maxLen int64
}

// Option is an option function for sink configuration.
type Option func(*Sink)

// WithLogger sets a custom logger for the sink.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStreamPrefix sets the stream key prefix. Default is DefaultStreamPrefix.
func WithStreamPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// WithMaxLen caps each stream at approximately n entries (XAdd MAXLEN ~).
// 0 means unbounded.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

// New creates a Redis Streams sink over an established client.
func New(client redis.UniversalClient, opts ...Option) (*Sink, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	s := &Sink{
		client: client,
		logger: slog.Default().With("component", "relay>redis"),
		prefix: DefaultStreamPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Stream returns the stream key used for a subject.
func (s *Sink) Stream(subject string) string {
	return s.prefix + subject
}

// Publish appends data to the subject's stream.
func (s *Sink) Publish(ctx context.Context, subject string, data []byte) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrSinkClosed
	}
	args := &redis.XAddArgs{
		Stream: s.Stream(subject),
		Values: map[string]any{payloadField: data},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return err
	}
	return nil
}

// Close stops the sink. The client stays open for its owner.
func (s *Sink) Close(ctx context.Context) error {
	atomic.StoreInt32(&s.closed, 1)
	return nil
}
