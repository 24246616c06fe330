package llm

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec is a google.golang.org/grpc/encoding.Codec that marshals
// messages as JSON instead of protobuf wire format. The gRPC transport
// adapter (grpc_client.go) needs no generated protobuf stubs because the
// wire contract here is the spec's plain (system, user, temperature) ->
// text shape, not tarsy's streaming-thinking protobuf schema; see
// DESIGN.md for the full rationale.
//
// Registered once under the content-subtype "json"; callers select it per
// RPC with grpc.CallContentSubtype("json").
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
