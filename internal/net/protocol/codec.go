package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes envelopes for one websocket framing.
type Codec interface {
	Name() string
	// Binary reports whether frames are binary websocket messages.
	Binary() bool
	Encode(typ string, payload any) ([]byte, error)
	// Decode splits a frame into its type and still-encoded payload.
	Decode(data []byte) (typ string, payload []byte, err error)
	// Unmarshal decodes a payload returned by Decode into v.
	Unmarshal(payload []byte, v any) error
}

// CodecByName returns the codec for a ?codec= query value. Unknown and empty
// names select JSON.
func CodecByName(name string) Codec {
	if name == "msgpack" {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

type jsonEnvelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"`
}

// JSONCodec sends text frames.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Encode(typ string, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", typ, err)
	}
	return json.Marshal(jsonEnvelope{Type: typ, Payload: p})
}

func (JSONCodec) Decode(data []byte) (string, []byte, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env.Type, env.Payload, nil
}

func (JSONCodec) Unmarshal(payload []byte, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

type msgpackEnvelope struct {
	Type    string             `json:"t"`
	Payload msgpack.RawMessage `json:"p,omitempty"`
}

// MsgpackCodec sends binary frames. Field names follow the json tags so
// both codecs share one schema.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Encode(typ string, payload any) ([]byte, error) {
	p, err := msgpackMarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", typ, err)
	}
	return msgpackMarshal(msgpackEnvelope{Type: typ, Payload: p})
}

func (MsgpackCodec) Decode(data []byte) (string, []byte, error) {
	var env msgpackEnvelope
	if err := msgpackUnmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env.Type, env.Payload, nil
}

func (MsgpackCodec) Unmarshal(payload []byte, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := msgpackUnmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func msgpackMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func msgpackUnmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
