package marshaler

import "github.com/vmihailenco/msgpack/v5"

// NewMsgpack returns a marshaler that marshals and unmarshals an arbitrary
// type using the MessagePack encoding.
func NewMsgpack[T any]() Marshaler[T] {
	return New(
		func(v T) ([]byte, error) {
			return msgpack.Marshal(v)
		},
		func(data []byte) (T, error) {
			var v T
			return v, msgpack.Unmarshal(data, &v)
		},
	)
}
