// Package rpc carries the wire conventions shared by Connect handlers and
// clients: plain Go request/response structs encoded as JSON, with amounts as
// fixed-point strings.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// CodecName replaces Connect's default protojson codec, so clients send
// Content-Type application/json.
const CodecName = "json"

// Codec is a connect.Codec for plain Go structs.
// Unknown fields are rejected so typos in requests surface as errors.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// HandlerOptions returns the options every handler is built with, followed by extra.
func HandlerOptions(extra ...connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, extra...)
}

// ClientOptions returns the options every client is built with, followed by extra.
func ClientOptions(extra ...connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, extra...)
}
