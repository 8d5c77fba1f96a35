// Package rpc defines the Connect wire surface: procedure names, message
// types, the codec, route registration and typed clients.
//
// The schema is maintained by hand as Go structs with a JSON codec rather
// than generated from proto files; the Connect runtime carries the protocol
// (error codes, deadlines, streaming envelopes) either way. Keep the structs,
// the procedure constants and the handler/client registrations in sync when
// changing the surface.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec marshals messages with encoding/json. The name "json" makes
// Connect negotiate application/json content types.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSONCodec returns the codec option shared by every handler and client.
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
