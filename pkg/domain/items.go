package domain

import (
	"reflect"
	"time"
)

// Items is an insertion-ordered mapping of string keys to opaque values.
// It is not safe for concurrent use.
type Items struct {
	keys   []string
	values map[string]any
}

// NewItems creates an empty payload.
func NewItems() *Items {
	return &Items{values: make(map[string]any)}
}

// Set stores a value. New keys are appended; existing keys keep their position.
func (it *Items) Set(key string, value any) {
	if it.values == nil {
		it.values = make(map[string]any)
	}
	if _, ok := it.values[key]; !ok {
		it.keys = append(it.keys, key)
	}
	it.values[key] = value
}

// Get returns the value for key.
func (it *Items) Get(key string) (any, bool) {
	if it == nil {
		return nil, false
	}
	v, ok := it.values[key]
	return v, ok
}

// Delete removes key if present.
func (it *Items) Delete(key string) {
	if it == nil {
		return
	}
	if _, ok := it.values[key]; !ok {
		return
	}
	delete(it.values, key)
	for i, k := range it.keys {
		if k == key {
			it.keys = append(it.keys[:i], it.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (it *Items) Keys() []string {
	if it == nil {
		return nil
	}
	out := make([]string, len(it.keys))
	copy(out, it.keys)
	return out
}

// Len returns the number of entries. A nil payload has length 0.
func (it *Items) Len() int {
	if it == nil {
		return 0
	}
	return len(it.keys)
}

// Each calls fn for every entry in insertion order.
func (it *Items) Each(fn func(key string, value any)) {
	if it == nil {
		return
	}
	for _, k := range it.keys {
		fn(k, it.values[k])
	}
}

// Map returns a copy of the entries as a plain map.
func (it *Items) Map() map[string]any {
	out := make(map[string]any, it.Len())
	it.Each(func(k string, v any) {
		out[k] = v
	})
	return out
}

// Equal reports whether two payloads hold the same keys, in the same order, with equal values.
func (it *Items) Equal(other *Items) bool {
	if it.Len() != other.Len() {
		return false
	}
	a, b := it.Keys(), other.Keys()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
		va, _ := it.Get(a[i])
		vb, _ := other.Get(b[i])
		if !valueEqual(va, vb) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
