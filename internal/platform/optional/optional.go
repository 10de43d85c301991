// Package optional distinguishes an absent JSON field from an explicit null.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is the decoded state of one request field. Set is false when the key
// was missing, Null is true when it was sent as null.
type Value[T any] struct {
	Set  bool
	Null bool
	V    T
}

func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, V: v}
}

func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		v.Null = true
		v.V = zero
		return nil
	}
	v.Null = false
	return json.Unmarshal(data, &v.V)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.Set || v.Null {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// Ptr returns nil unless a non-null value was provided.
func (v Value[T]) Ptr() *T {
	if !v.Set || v.Null {
		return nil
	}
	out := v.V
	return &out
}

// Map converts a provided value, keeping the absent and null states.
func Map[T, U any](v Value[T], fn func(T) (U, error)) (Value[U], error) {
	if !v.Set {
		return Value[U]{}, nil
	}
	if v.Null {
		return Null[U](), nil
	}
	out, err := fn(v.V)
	if err != nil {
		return Value[U]{}, err
	}
	return Of(out), nil
}
