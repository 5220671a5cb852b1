// Package relay forwards fired payloads to external systems so observers in
// other processes can subscribe to them.
//
// A relay is attached to a slot as an ordinary listener:
//
//	r, err := relay.New(sink) // channel.New(), nats.New(conn), redis.New(client), kafka.New(producer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	TempChanged.Of(s).Subscribe(relay.Listener[TempChange](r, "sensor.temp"))
//
// Every fire is wrapped in a codec.Envelope and published to the sink under
// the given subject, synchronously on the firing goroutine. Sink errors
// abort the fire like any other listener error.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/observekit/observe"
	"github.com/observekit/observe/relay/codec"
)

// Relay errors
var (
	ErrSinkRequired = errors.New("sink is required: use channel.New(), nats.New(conn) or similar")
	ErrRelayClosed  = errors.New("relay is closed")
)

const instrumentationName = "github.com/observekit/observe/relay"

// Sink is the destination a relay publishes encoded envelopes to.
type Sink interface {
	// Publish sends one encoded envelope under the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close releases resources held by the sink. Publishing after Close is
	// an error.
	Close(ctx context.Context) error
}

const (
	relayRunning = 1
	relayStopped = 0
)

// Relay publishes codec-encoded envelopes to a sink.
type Relay struct {
	status         int32
	sink           Sink
	codec          codec.Codec
	logger         *slog.Logger
	source         string
	prefix         string
	metadata       map[string]string
	tracingEnabled bool
	metricsEnabled bool
}

// relayOptions holds configuration for a relay (unexported)
type relayOptions struct {
	codec          codec.Codec
	logger         *slog.Logger
	source         string
	prefix         string
	metadata       map[string]string
	tracingEnabled bool
	metricsEnabled bool
}

// Option is an option function for relay configuration.
type Option func(*relayOptions)

// WithCodec sets the envelope codec. Default is codec.JSON.
func WithCodec(c codec.Codec) Option {
	return func(o *relayOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets a custom logger for the relay.
func WithLogger(l *slog.Logger) Option {
	return func(o *relayOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSource sets the envelope source ID. Defaults to a generated ID, one
// per relay.
func WithSource(source string) Option {
	return func(o *relayOptions) {
		if source != "" {
			o.source = source
		}
	}
}

// WithSubjectPrefix prepends "<prefix>." to every published subject.
func WithSubjectPrefix(prefix string) Option {
	return func(o *relayOptions) {
		o.prefix = prefix
	}
}

// WithMetadata attaches fixed metadata to every envelope.
func WithMetadata(md map[string]string) Option {
	return func(o *relayOptions) {
		o.metadata = md
	}
}

// WithTracing enables/disables a producer span per publish. Default is true.
func WithTracing(enabled bool) Option {
	return func(o *relayOptions) {
		o.tracingEnabled = enabled
	}
}

// WithMetrics enables/disables publish counters. Default is true.
func WithMetrics(enabled bool) Option {
	return func(o *relayOptions) {
		o.metricsEnabled = enabled
	}
}

// New creates a relay publishing to sink.
func New(sink Sink, opts ...Option) (*Relay, error) {
	if sink == nil {
		return nil, ErrSinkRequired
	}
	o := &relayOptions{
		codec:          codec.Default(),
		logger:         slog.Default(),
		source:         observe.NewID(),
		tracingEnabled: true,
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Relay{
		status:         relayRunning,
		sink:           sink,
		codec:          o.codec,
		logger:         o.logger.With("component", "relay"),
		source:         o.source,
		prefix:         o.prefix,
		metadata:       o.metadata,
		tracingEnabled: o.tracingEnabled,
		metricsEnabled: o.metricsEnabled,
	}, nil
}

// Source returns the relay's envelope source ID.
func (r *Relay) Source() string {
	return r.source
}

// Running returns true if the relay has not been closed.
func (r *Relay) Running() bool {
	return atomic.LoadInt32(&r.status) == relayRunning
}

// Close stops the relay and closes its sink.
func (r *Relay) Close(ctx context.Context) error {
	if atomic.CompareAndSwapInt32(&r.status, relayRunning, relayStopped) {
		return r.sink.Close(ctx)
	}
	return nil
}

func (r *Relay) subject(subject string) string {
	if r.prefix == "" {
		return subject
	}
	return r.prefix + "." + subject
}

// Publish encodes payload in an envelope and sends it to the sink under
// subject. When called from inside a fire, the envelope reuses the fire's
// event ID so in-process and relayed observers see the same identity.
func (r *Relay) Publish(ctx context.Context, subject string, payload any) error {
	if !r.Running() {
		return ErrRelayClosed
	}

	subject = r.subject(subject)

	eventID := observe.ContextEventID(ctx)
	if eventID == "" {
		eventID = observe.NewID()
	}

	if r.metricsEnabled {
		meter := otel.Meter(instrumentationName)
		published, _ := meter.Int64Counter("relay.published",
			metric.WithDescription("Total number of envelopes published"))
		published.Add(ctx, 1, metric.WithAttributes(attribute.String("subject", subject)))
	}

	if r.tracingEnabled {
		tracer := otel.Tracer(instrumentationName)
		var span trace.Span
		ctx, span = tracer.Start(ctx, fmt.Sprintf("%s.publish", subject),
			trace.WithAttributes(
				attribute.String("relay.event.id", eventID),
				attribute.String("relay.source", r.source),
				attribute.String("relay.codec", r.codec.Name())),
			trace.WithSpanKind(trace.SpanKindProducer))
		defer span.End()
	}

	data, err := r.codec.Encode(codec.Envelope{
		ID:       eventID,
		Source:   r.source,
		Subject:  subject,
		Payload:  payload,
		Metadata: r.metadata,
	})
	if err != nil {
		return err
	}

	if err := r.sink.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("relay publish %q: %w", subject, err)
	}
	r.logger.Debug("published envelope", "subject", subject, "event_id", eventID)
	return nil
}

// Listener returns a listener that publishes every fired payload to r under
// subject. Subscribe it on any slot:
//
//	TempChanged.Of(s).Subscribe(relay.Listener[TempChange](r, "sensor.temp"))
func Listener[T any](r *Relay, subject string) observe.Listener[T] {
	return func(ctx context.Context, data T) error {
		return r.Publish(ctx, subject, data)
	}
}
