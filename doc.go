// Package observe lets a type declare events as package-level slots and lets
// callers attach, detach and fire listeners on a per-instance basis.
//
// Architecture:
// - Generic slots with compile-time type safety: Slot[T] ensures firers and listeners use the same type
// - Slots are declared once, next to the type they belong to; each slot carries a stable key
// - Instances opt in by embedding Emitter; listener storage is created lazily per instance
// - Dispatch is synchronous and ordered: listeners run on the caller's goroutine, fail-fast
//
// Basic example:
//
//	type TempChange struct {
//	    Celsius float64
//	}
//
//	// Declare an event next to the type it belongs to.
//	var TempChanged = observe.NewSlot[TempChange]("sensor.temp_changed")
//
//	type Sensor struct {
//	    observe.Emitter
//	}
//
//	s := &Sensor{}
//
//	// Subscribe with a type-safe listener.
//	TempChanged.Of(s).Subscribe(func(ctx context.Context, c TempChange) error {
//	    fmt.Printf("now %.1fC\n", c.Celsius)
//	    return nil
//	})
//
//	// Fire. Listeners run in subscription order; the first error stops the fire.
//	if err := TempChanged.Of(s).Fire(ctx, TempChange{Celsius: 21.5}); err != nil {
//	    log.Fatal(err)
//	}
//
// Observable properties:
//
//	var Temp = observe.NewProperty[float64]("sensor.temp")
//
//	Temp.Changed().Of(s).Subscribe(func(ctx context.Context, c observe.Change[float64]) error {
//	    fmt.Printf("%v -> %v\n", c.Old, c.New)
//	    return nil
//	})
//	Temp.Set(ctx, s, 21.5) // fires Changed
//	Temp.Set(ctx, s, 21.5) // equal value, no fire
//
// Fixed layouts:
// By default an emitter accepts any declared slot and allocates storage on first
// use. NewLayout pins an instance to a fixed declaration set, validated when the
// layout is built:
//
//	layout, err := observe.NewLayout(TempChanged, Temp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s := &Sensor{Emitter: layout.NewEmitter()}
//
// Accessing a slot outside the layout panics with *NotDeclaredError.
//
// Slot Options:
//   - WithLogger: set logger for the slot. Default is slog.Default().
//   - WithTracing: enable/disable OpenTelemetry tracing per fire. Default is true.
//   - WithMetrics: enable/disable OpenTelemetry metrics per fire. Default is true.
//
// Subscribe Options:
//   - WithMiddleware: wrap the listener in a middleware chain (Filter, RateLimit, Recover, ...).
//
// Concurrency:
// Dispatch is single-goroutine by design. Subscribing, unsubscribing and firing
// on the same instance from multiple goroutines requires external synchronization.
// Mutating a listener list from inside one of its own listeners is undefined.
//
// Relaying:
// The relay subpackage forwards fired payloads to external systems (NATS, Redis
// Streams, Kafka, in-memory channels) through pluggable codecs, so out-of-process
// observers can subscribe too. A relay listener is an ordinary listener: it runs
// synchronously and its errors stop the fire like any other.
package observe
