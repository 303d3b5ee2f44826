package client

import (
	"google.golang.org/grpc/encoding"

	"github.com/luxfi/ordergate/wire"
)

// codecSubtype is the gRPC content subtype used for every ordergate RPC.
// The wire encoding is deliberately left to the deployment, so rather
// than depending on generated protobuf message types this module
// registers its own encoding.Codec, a grpc-native wrapper around
// wire.JSONCodec, and selects it per call with grpc.CallContentSubtype.
const codecSubtype = "ordergate-json"

func init() {
	encoding.RegisterCodec(grpcJSONCodec{})
}

// grpcJSONCodec adapts wire.JSONCodec to grpc's encoding.Codec interface.
type grpcJSONCodec struct{}

func (grpcJSONCodec) Marshal(v interface{}) ([]byte, error) {
	return wire.DefaultCodec.Marshal(v)
}

func (grpcJSONCodec) Unmarshal(data []byte, v interface{}) error {
	return wire.DefaultCodec.Unmarshal(data, v)
}

func (grpcJSONCodec) Name() string {
	return codecSubtype
}
