package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/observekit/observe"
	"github.com/observekit/observe/relay"
	"github.com/observekit/observe/relay/channel"
	"github.com/observekit/observe/relay/codec"
)

type tempChange struct {
	Celsius float64 `json:"celsius" msgpack:"celsius"`
}

type sensor struct {
	observe.Emitter
}

func TestRelayForwardsFires(t *testing.T) {
	tempChanged := observe.NewSlot[tempChange]("sensor.temp_changed")
	s := &sensor{}

	sink := channel.New()
	r, err := relay.New(sink, relay.WithSource("sensor-1"))
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}

	tempChanged.Of(s).Subscribe(relay.Listener[tempChange](r, "sensor.temp"))
	if err := tempChanged.Of(s).Fire(context.Background(), tempChange{Celsius: 21.5}); err != nil {
		t.Fatalf("fire failed: %v", err)
	}

	msgs := sink.MessagesFor("sensor.temp")
	if len(msgs) != 1 {
		t.Fatalf("sink got %d messages, want 1", len(msgs))
	}

	env, err := codec.JSON{}.Decode(msgs[0].Data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if env.Source != "sensor-1" {
		t.Errorf("source = %q, want %q", env.Source, "sensor-1")
	}
	if env.Subject != "sensor.temp" {
		t.Errorf("subject = %q, want %q", env.Subject, "sensor.temp")
	}
	if env.ID == "" {
		t.Error("envelope id is empty")
	}

	var got tempChange
	if err := json.Unmarshal(env.Payload.(json.RawMessage), &got); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if got.Celsius != 21.5 {
		t.Errorf("payload = %+v, want 21.5", got)
	}
}

func TestRelayReusesFireEventID(t *testing.T) {
	ping := observe.NewSlot[int]("ping")
	s := &sensor{}
	sink := channel.New()
	r, err := relay.New(sink)
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}

	var fireID string
	ping.Of(s).Subscribe(func(ctx context.Context, n int) error {
		fireID = observe.ContextEventID(ctx)
		return nil
	})
	ping.Of(s).Subscribe(relay.Listener[int](r, "ping"))
	if err := ping.Of(s).Fire(context.Background(), 1); err != nil {
		t.Fatalf("fire failed: %v", err)
	}

	env, err := codec.JSON{}.Decode(sink.Messages()[0].Data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if fireID == "" || env.ID != fireID {
		t.Errorf("envelope id = %q, want the fire id %q", env.ID, fireID)
	}
}

func TestRelaySubjectPrefix(t *testing.T) {
	sink := channel.New()
	r, err := relay.New(sink, relay.WithSubjectPrefix("plant"))
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if err := r.Publish(context.Background(), "sensor.temp", 1); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if got := sink.Messages()[0].Subject; got != "plant.sensor.temp" {
		t.Errorf("subject = %q, want %q", got, "plant.sensor.temp")
	}
}

type failingSink struct{ err error }

func (s *failingSink) Publish(ctx context.Context, subject string, data []byte) error {
	return s.err
}

func (s *failingSink) Close(ctx context.Context) error { return nil }

func TestRelaySinkErrorAbortsFire(t *testing.T) {
	ping := observe.NewSlot[int]("ping")
	s := &sensor{}
	boom := errors.New("sink down")

	r, err := relay.New(&failingSink{err: boom})
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	rec := observe.NewRecorder[int]()
	ping.Of(s).Subscribe(relay.Listener[int](r, "ping"))
	ping.Of(s).Subscribe(rec.Listener())

	if err := ping.Of(s).Fire(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("fire = %v, want the sink error", err)
	}
	if rec.Count() != 0 {
		t.Error("listener after the failing relay still ran")
	}
}

func TestRelayRequiresSink(t *testing.T) {
	if _, err := relay.New(nil); !errors.Is(err, relay.ErrSinkRequired) {
		t.Errorf("New(nil) = %v, want ErrSinkRequired", err)
	}
}

func TestRelayClose(t *testing.T) {
	sink := channel.New()
	r, err := relay.New(sink)
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if r.Running() {
		t.Error("relay still running after Close")
	}
	if err := r.Publish(context.Background(), "x", 1); !errors.Is(err, relay.ErrRelayClosed) {
		t.Errorf("publish after close = %v, want ErrRelayClosed", err)
	}
	// Closing twice is fine.
	if err := r.Close(context.Background()); err != nil {
		t.Errorf("second close = %v", err)
	}
}

func TestRelayMsgPackCodec(t *testing.T) {
	sink := channel.New()
	r, err := relay.New(sink, relay.WithCodec(codec.MsgPack{}))
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if err := r.Publish(context.Background(), "sensor.temp", tempChange{Celsius: 3.5}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	env, err := codec.MsgPack{}.Decode(sink.Messages()[0].Data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if env.Subject != "sensor.temp" {
		t.Errorf("subject = %q, want %q", env.Subject, "sensor.temp")
	}
}
