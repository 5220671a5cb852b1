package codec

import (
	"encoding/base64"
	"errors"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Proto implements Codec using Protocol Buffers serialization. The envelope
// is encoded as a structpb.Struct, so no generated schema is required.
//
// Payload handling:
//   - If the payload implements proto.Message, it's wrapped in Any
//   - Otherwise it's converted to structpb.Value (JSON-like values only)
//   - Decode returns *anypb.Any for wrapped messages, or the structpb
//     value's Go shape for generic values
//
// For best fidelity, use proto.Message types for payloads.
type Proto struct{}

// Struct field names in the wire format
const (
	protoFieldID       = "id"
	protoFieldSource   = "source"
	protoFieldSubject  = "subject"
	protoFieldMetadata = "metadata"
	protoFieldPayload  = "payload"
	protoFieldAny      = "payload_any"
)

// Encode serializes an envelope to Protocol Buffer bytes
func (c Proto) Encode(env Envelope) ([]byte, error) {
	fields := map[string]any{
		protoFieldID:      env.ID,
		protoFieldSubject: env.Subject,
	}
	if env.Source != "" {
		fields[protoFieldSource] = env.Source
	}
	if env.Metadata != nil {
		meta := make(map[string]any, len(env.Metadata))
		for k, v := range env.Metadata {
			meta[k] = v
		}
		fields[protoFieldMetadata] = meta
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}

	if env.Payload != nil {
		switch p := env.Payload.(type) {
		case proto.Message:
			// Wrap proto.Message in Any and carry it as base64 bytes
			anyPayload, err := anypb.New(p)
			if err != nil {
				return nil, errors.Join(ErrEncodeFailure, err)
			}
			raw, err := proto.Marshal(anyPayload)
			if err != nil {
				return nil, errors.Join(ErrEncodeFailure, err)
			}
			st.Fields[protoFieldAny] = structpb.NewStringValue(base64.StdEncoding.EncodeToString(raw))
		default:
			// Convert to structpb.Value for generic types
			val, err := structpb.NewValue(p)
			if err != nil {
				return nil, errors.Join(ErrEncodeFailure, err)
			}
			st.Fields[protoFieldPayload] = val
		}
	}

	data, err := proto.Marshal(st)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes Protocol Buffer bytes to an envelope
func (c Proto) Decode(data []byte) (Envelope, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return Envelope{}, errors.Join(ErrDecodeFailure, err)
	}

	env := Envelope{
		ID:      st.Fields[protoFieldID].GetStringValue(),
		Source:  st.Fields[protoFieldSource].GetStringValue(),
		Subject: st.Fields[protoFieldSubject].GetStringValue(),
	}

	if meta := st.Fields[protoFieldMetadata].GetStructValue(); meta != nil {
		env.Metadata = make(map[string]string, len(meta.Fields))
		for k, v := range meta.Fields {
			env.Metadata[k] = v.GetStringValue()
		}
	}

	if anyVal, ok := st.Fields[protoFieldAny]; ok {
		raw, err := base64.StdEncoding.DecodeString(anyVal.GetStringValue())
		if err != nil {
			return Envelope{}, errors.Join(ErrDecodeFailure, err)
		}
		anyPayload := &anypb.Any{}
		if err := proto.Unmarshal(raw, anyPayload); err != nil {
			return Envelope{}, errors.Join(ErrDecodeFailure, err)
		}
		env.Payload = anyPayload
	} else if val, ok := st.Fields[protoFieldPayload]; ok {
		env.Payload = val.AsInterface()
	}

	return env, nil
}

// ContentType returns the MIME type for Protocol Buffers
func (c Proto) ContentType() string {
	return "application/x-protobuf"
}

// Name returns the codec identifier
func (c Proto) Name() string {
	return "proto"
}

// Compile-time check
var _ Codec = Proto{}
