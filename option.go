package observe

import "log/slog"

// slotConfig holds per-slot configuration (unexported)
type slotConfig struct {
	logger         *slog.Logger
	tracingEnabled bool
	metricsEnabled bool
}

// newSlotConfig creates a config with defaults and applies provided options
func newSlotConfig(opts ...SlotOption) slotConfig {
	cfg := slotConfig{
		logger:         slog.Default(),
		tracingEnabled: true,
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// SlotOption is an option function for slot configuration.
type SlotOption func(*slotConfig)

// WithLogger sets a custom logger for the slot.
func WithLogger(l *slog.Logger) SlotOption {
	return func(cfg *slotConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithTracing enables/disables an OpenTelemetry span around each fire.
// Enabled by default; a no-op unless a global tracer provider is installed.
func WithTracing(enabled bool) SlotOption {
	return func(cfg *slotConfig) {
		cfg.tracingEnabled = enabled
	}
}

// WithMetrics enables/disables OpenTelemetry fire counters.
// Enabled by default; a no-op unless a global meter provider is installed.
func WithMetrics(enabled bool) SlotOption {
	return func(cfg *slotConfig) {
		cfg.metricsEnabled = enabled
	}
}

// subscribeConfig holds per-subscription configuration (unexported)
type subscribeConfig[T any] struct {
	middleware []Middleware[T]
}

// SubscribeOption is an option function applied when attaching a listener.
type SubscribeOption[T any] func(*subscribeConfig[T])

// WithMiddleware wraps the listener in a middleware chain. Middleware runs
// in the order given, outermost first. The listener keeps its original
// identity for Unsubscribe and Contains.
func WithMiddleware[T any](mw ...Middleware[T]) SubscribeOption[T] {
	return func(cfg *subscribeConfig[T]) {
		cfg.middleware = append(cfg.middleware, mw...)
	}
}
