package marshaler

import (
	"google.golang.org/protobuf/proto"
)

// NewProto returns a marshaler that marshals and unmarshals Protocol Buffers
// messages of type T using the proto wire format.
func NewProto[
	T interface {
		proto.Message
		*S
	},
	S any,
]() Marshaler[T] {
	return New(
		func(v T) ([]byte, error) {
			return proto.Marshal(v)
		},
		func(data []byte) (T, error) {
			var v T = new(S)
			return v, proto.Unmarshal(data, v)
		},
	)
}
