// Package channel provides an in-memory relay sink.
//
// The channel sink keeps every published envelope in order and can expose
// them on a Go channel, which makes it the natural sink for tests and for
// same-process consumers that want a decoupled feed.
package channel

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Sink errors
var (
	ErrSinkClosed = errors.New("channel sink closed")
	ErrFull       = errors.New("channel sink buffer full")
)

// DefaultBufferSize is the subscribe channel capacity used by New.
var DefaultBufferSize = 100

// Message is one published envelope as the sink received it.
type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

// Sink is an in-memory relay sink. Safe for concurrent use.
type Sink struct {
	mu     sync.Mutex
	msgs   []Message
	ch     chan Message
	closed bool
}

// Option is an option function for sink configuration.
type Option func(*Sink)

// WithBufferSize sets the capacity of the channel returned by Chan.
// Publishing with a full channel fails with ErrFull rather than blocking
// the firing goroutine.
func WithBufferSize(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.ch = make(chan Message, n)
		}
	}
}

// New creates an in-memory sink.
func New(opts ...Option) *Sink {
	s := &Sink{
		ch: make(chan Message, DefaultBufferSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish records the envelope and offers it on the sink's channel.
func (s *Sink) Publish(ctx context.Context, subject string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	msg := Message{Subject: subject, Data: data, Timestamp: time.Now()}
	s.msgs = append(s.msgs, msg)
	select {
	case s.ch <- msg:
		return nil
	default:
		return ErrFull
	}
}

// Chan returns the feed of published envelopes. Closed by Close.
func (s *Sink) Chan() <-chan Message {
	return s.ch
}

// Messages returns a copy of every published envelope in publish order.
func (s *Sink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// MessagesFor returns the published envelopes for one subject.
func (s *Sink) MessagesFor(subject string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Message
	for _, m := range s.msgs {
		if m.Subject == subject {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of published envelopes.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// Reset clears the recorded envelopes. The channel feed is unaffected.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
}

// Close stops the sink and closes the channel feed.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.ch)
	return nil
}
