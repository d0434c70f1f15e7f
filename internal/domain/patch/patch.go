// Package patch provides presence-aware fields for partial updates.
//
// A Field distinguishes a value that was omitted from the request from one
// that was sent, including an explicit JSON null (which clears the value).
package patch

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a Field holding value.
func Some[T any](value T) Field[T] {
	return Field[T]{Set: true, Value: value}
}

// Get returns the value and whether it was set.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// Or returns the patched value when set, otherwise current.
func (f Field[T]) Or(current T) T {
	if f.Set {
		return f.Value
	}
	return current
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
