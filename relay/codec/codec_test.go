package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/durationpb"
)

func TestJSONRoundTrip(t *testing.T) {
	type reading struct {
		Celsius float64 `json:"celsius"`
	}
	env := Envelope{
		ID:       "evt-1",
		Source:   "sensor-1",
		Subject:  "sensor.temp",
		Payload:  reading{Celsius: 21.5},
		Metadata: map[string]string{"site": "north"},
	}

	data, err := JSON{}.Encode(env)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := JSON{}.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != env.ID || got.Source != env.Source || got.Subject != env.Subject {
		t.Errorf("headers = %+v, want %+v", got, env)
	}
	if got.Metadata["site"] != "north" {
		t.Errorf("metadata = %v", got.Metadata)
	}
	var r reading
	if err := json.Unmarshal(got.Payload.(json.RawMessage), &r); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if r.Celsius != 21.5 {
		t.Errorf("payload = %+v, want 21.5", r)
	}
}

func TestJSONDecodeFailure(t *testing.T) {
	if _, err := (JSON{}).Decode([]byte("{nope")); !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("decode = %v, want ErrDecodeFailure", err)
	}
}

func TestMsgPackRoundTrip(t *testing.T) {
	type reading struct {
		Celsius float64 `msgpack:"celsius"`
	}
	env := Envelope{
		ID:      "evt-2",
		Subject: "sensor.temp",
		Payload: reading{Celsius: -4},
	}

	data, err := MsgPack{}.Encode(env)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := MsgPack{}.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != "evt-2" || got.Subject != "sensor.temp" {
		t.Errorf("headers = %+v", got)
	}
	var r reading
	if err := msgpack.Unmarshal(got.Payload.(msgpack.RawMessage), &r); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if r.Celsius != -4 {
		t.Errorf("payload = %+v, want -4", r)
	}
}

func TestProtoRoundTripGenericPayload(t *testing.T) {
	env := Envelope{
		ID:       "evt-3",
		Source:   "sensor-1",
		Subject:  "sensor.state",
		Payload:  map[string]any{"open": true, "angle": 42.0},
		Metadata: map[string]string{"site": "north"},
	}

	data, err := Proto{}.Encode(env)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := Proto{}.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != env.ID || got.Subject != env.Subject || got.Source != env.Source {
		t.Errorf("headers = %+v, want %+v", got, env)
	}
	if got.Metadata["site"] != "north" {
		t.Errorf("metadata = %v", got.Metadata)
	}
	payload, ok := got.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T", got.Payload)
	}
	if payload["open"] != true || payload["angle"] != 42.0 {
		t.Errorf("payload = %v", payload)
	}
}

func TestProtoRoundTripMessagePayload(t *testing.T) {
	env := Envelope{
		ID:      "evt-4",
		Subject: "sensor.elapsed",
		Payload: durationpb.New(1500000000),
	}

	data, err := Proto{}.Encode(env)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := Proto{}.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	anyPayload, ok := got.Payload.(*anypb.Any)
	if !ok {
		t.Fatalf("payload type = %T, want *anypb.Any", got.Payload)
	}
	var d durationpb.Duration
	if err := anyPayload.UnmarshalTo(&d); err != nil {
		t.Fatalf("unmarshal any failed: %v", err)
	}
	if d.AsDuration() != 1500000000 {
		t.Errorf("payload = %v, want 1.5s", d.AsDuration())
	}
}
