// Package nats provides a NATS Core relay sink.
//
// NATS Core gives at-most-once delivery: envelopes published while no
// subscriber is connected are dropped. That matches the library's dispatch
// model, where a fire with no listeners is a no-op, and suits live
// change-feed consumers. For durable feeds use the redis or kafka sinks.
package nats

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/nats-io/nats.go"
)

// Sink errors
var (
	ErrConnRequired = errors.New("nats connection is required")
	ErrSinkClosed   = errors.New("nats sink closed")
)

// Sink publishes envelopes to NATS Core subjects.
//
// The sink does not own the connection; Close flushes pending publishes and
// marks the sink stopped, but leaves the connection to its owner.
type Sink struct {
	closed int32
	conn   *nats.Conn
	logger *slog.Logger
	flush  bool
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

// WithFlush makes every publish flush the connection before returning,
// trading throughput for a confirmation that the server received the
// envelope. Default is false (fire-and-forget, NATS Core semantics).
func WithFlush(enabled bool) Option {
	return func(s *Sink) {
		s.flush = enabled
	}
}

// New creates a NATS sink over an established connection.
func New(conn *nats.Conn, opts ...Option) (*Sink, error) {
	if conn == nil {
		return nil, ErrConnRequired
	}
	s := &Sink{
		conn:   conn,
		logger: slog.Default().With("component", "relay>nats"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Publish sends data under subject.
func (s *Sink) Publish(ctx context.Context, subject string, data []byte) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrSinkClosed
	}
	if err := s.conn.Publish(subject, data); err != nil {
		return err
	}
	if s.flush {
		return s.conn.FlushWithContext(ctx)
	}
	return nil
}

// Close flushes pending publishes and stops the sink. The connection stays
// open for its owner.
func (s *Sink) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		s.logger.Warn("flush on close failed", "error", err)
		return err
	}
	return nil
}
