// Package codec provides envelope serialization for relay sinks.
//
// Supported formats:
//   - JSON (default, human-readable)
//   - MessagePack (binary, compact)
//   - Protocol Buffers (binary, structpb/anypb based)
package codec

import "errors"

// Codec errors
var (
	ErrEncodeFailure = errors.New("failed to encode envelope")
	ErrDecodeFailure = errors.New("failed to decode envelope")
)

// Envelope is the unit a relay publishes: one fired payload plus the
// metadata an out-of-process observer needs to act on it.
//
// On encode, Payload holds the fired value. On decode, Payload holds the
// codec's raw form (json.RawMessage, msgpack.RawMessage, or the structpb
// value's Go shape) for the consumer to interpret.
type Envelope struct {
	ID       string
	Source   string
	Subject  string
	Payload  any
	Metadata map[string]string
}

// Codec handles envelope serialization for relay sinks.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode serializes an envelope to bytes.
	// Returns ErrEncodeFailure if serialization fails.
	Encode(env Envelope) ([]byte, error)

	// Decode deserializes bytes to an envelope. The payload is left in the
	// codec's raw form for the consumer to unmarshal.
	// Returns ErrDecodeFailure if deserialization fails.
	Decode(data []byte) (Envelope, error)

	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Name returns a short identifier for this codec (e.g., "json", "msgpack", "proto").
	Name() string
}

// Default returns the default codec (JSON)
func Default() Codec {
	return JSON{}
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
