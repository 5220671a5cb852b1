package codec

import (
	"encoding/json"
	"errors"
)

// JSON implements Codec using JSON serialization.
// This is the default codec, providing human-readable output.
type JSON struct{}

// jsonEnvelope is the JSON wire format
type jsonEnvelope struct {
	ID       string            `json:"id"`
	Source   string            `json:"source,omitempty"`
	Subject  string            `json:"subject"`
	Payload  json.RawMessage   `json:"payload,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Encode serializes an envelope to JSON bytes
func (c JSON) Encode(env Envelope) ([]byte, error) {
	je := jsonEnvelope{
		ID:       env.ID,
		Source:   env.Source,
		Subject:  env.Subject,
		Metadata: copyMetadata(env.Metadata),
	}

	if env.Payload != nil {
		payload, err := json.Marshal(env.Payload)
		if err != nil {
			return nil, errors.Join(ErrEncodeFailure, err)
		}
		je.Payload = payload
	}

	data, err := json.Marshal(je)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes JSON bytes to an envelope.
// The payload remains a json.RawMessage for the consumer to unmarshal.
func (c JSON) Decode(data []byte) (Envelope, error) {
	var je jsonEnvelope
	if err := json.Unmarshal(data, &je); err != nil {
		return Envelope{}, errors.Join(ErrDecodeFailure, err)
	}

	env := Envelope{
		ID:       je.ID,
		Source:   je.Source,
		Subject:  je.Subject,
		Metadata: copyMetadata(je.Metadata),
	}
	if je.Payload != nil {
		env.Payload = je.Payload
	}
	return env, nil
}

// ContentType returns the MIME type for JSON
func (c JSON) ContentType() string {
	return "application/json"
}

// Name returns the codec identifier
func (c JSON) Name() string {
	return "json"
}

// Compile-time check
var _ Codec = JSON{}
