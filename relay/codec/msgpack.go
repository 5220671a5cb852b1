package codec

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack implements Codec using MessagePack serialization.
// MessagePack is a binary format that's more compact than JSON
// while maintaining schema-less flexibility.
//
// Payload handling:
//   - Encode: marshals the payload to MessagePack
//   - Decode: payload is msgpack.RawMessage, unmarshaled by the consumer
type MsgPack struct{}

// msgpackEnvelope is the MessagePack wire format
type msgpackEnvelope struct {
	ID       string             `msgpack:"id"`
	Source   string             `msgpack:"source,omitempty"`
	Subject  string             `msgpack:"subject"`
	Payload  msgpack.RawMessage `msgpack:"payload,omitempty"`
	Metadata map[string]string  `msgpack:"metadata,omitempty"`
}

// Encode serializes an envelope to MessagePack bytes
func (c MsgPack) Encode(env Envelope) ([]byte, error) {
	me := msgpackEnvelope{
		ID:       env.ID,
		Source:   env.Source,
		Subject:  env.Subject,
		Metadata: copyMetadata(env.Metadata),
	}

	if env.Payload != nil {
		payload, err := msgpack.Marshal(env.Payload)
		if err != nil {
			return nil, errors.Join(ErrEncodeFailure, err)
		}
		me.Payload = payload
	}

	data, err := msgpack.Marshal(me)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes MessagePack bytes to an envelope.
// The payload remains a msgpack.RawMessage for the consumer to unmarshal.
func (c MsgPack) Decode(data []byte) (Envelope, error) {
	var me msgpackEnvelope
	if err := msgpack.Unmarshal(data, &me); err != nil {
		return Envelope{}, errors.Join(ErrDecodeFailure, err)
	}

	env := Envelope{
		ID:       me.ID,
		Source:   me.Source,
		Subject:  me.Subject,
		Metadata: copyMetadata(me.Metadata),
	}
	if me.Payload != nil {
		env.Payload = me.Payload
	}
	return env, nil
}

// ContentType returns the MIME type for MessagePack
func (c MsgPack) ContentType() string {
	return "application/msgpack"
}

// Name returns the codec identifier
func (c MsgPack) Name() string {
	return "msgpack"
}

// Compile-time check
var _ Codec = MsgPack{}
