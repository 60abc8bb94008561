package marshaler

import "github.com/goccy/go-yaml"

// NewYAML returns a marshaler that marshals and unmarshals an arbitrary type
// using the YAML encoding.
func NewYAML[T any]() Marshaler[T] {
	return New(
		func(v T) ([]byte, error) {
			return yaml.Marshal(v)
		},
		func(data []byte) (T, error) {
			var v T
			return v, yaml.Unmarshal(data, &v)
		},
	)
}
