// Package kafka provides a Kafka relay sink over sarama.
//
// Every subject maps to one topic. Publishes go through a synchronous
// producer, so a fire does not return until the broker acknowledged the
// envelope; configure the producer's RequiredAcks to taste.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/IBM/sarama"
)

// Sink errors
var (
	ErrProducerRequired = errors.New("kafka producer is required")
	ErrSinkClosed       = errors.New("kafka sink closed")
)

// Sink publishes envelopes to Kafka topics.
//
// The sink owns the producer: Close closes it. Construct the producer with
// sarama.NewSyncProducer and Producer.Return.Successes = true.
type Sink struct {
	closed   int32
	producer sarama.SyncProducer
	logger   *slog.Logger
	key      func(subject string) string
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

// WithKey sets the partition key derivation per subject. Defaults to the
// subject itself, keeping each subject's envelopes ordered on one partition.
func WithKey(key func(subject string) string) Option {
	return func(s *Sink) {
		if key != nil {
			s.key = key
		}
	}
}

// New creates a Kafka sink over a synchronous producer.
func New(producer sarama.SyncProducer, opts ...Option) (*Sink, error) {
	if producer == nil {
		return nil, ErrProducerRequired
	}
	s := &Sink{
		producer: producer,
		logger:   slog.Default().With("component", "relay>kafka"),
		key:      func(subject string) string { return subject },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Publish sends data to the subject's topic.
func (s *Sink) Publish(ctx context.Context, subject string, data []byte) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrSinkClosed
	}
	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: subject,
		Key:   sarama.StringEncoder(s.key(subject)),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return err
	}
	s.logger.Debug("published envelope", "topic", subject, "partition", partition, "offset", offset)
	return nil
}

// Close closes the producer.
func (s *Sink) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	return s.producer.Close()
}
