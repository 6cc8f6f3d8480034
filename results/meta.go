package results

import (
	"fmt"
	"reflect"
)

type entry struct {
	key   string
	value any
}

// Meta is an ordered, read-only mapping of string keys to arbitrary values.
// The zero value is an empty Meta. With returns a modified copy and never
// touches the receiver.
type Meta struct {
	entries []entry
}

// NewMeta builds a Meta from alternating keys and values.
// It panics if the arguments are not key/value pairs with string keys.
func NewMeta(kv ...any) Meta {
	if len(kv)%2 != 0 {
		panic("results: NewMeta requires key/value pairs")
	}

	var m Meta
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("results: metadata key %v is not a string", kv[i]))
		}
		m = m.With(key, kv[i+1])
	}
	return m
}

// With returns a copy of m with key set to value. An existing key keeps its position.
func (m Meta) With(key string, value any) Meta {
	entries := make([]entry, len(m.entries), len(m.entries)+1)
	copy(entries, m.entries)

	for i := range entries {
		if entries[i].key == key {
			entries[i].value = value
			return Meta{entries: entries}
		}
	}
	return Meta{entries: append(entries, entry{key: key, value: value})}
}

// Get returns the value stored under key.
func (m Meta) Get(key string) (any, bool) {
	for _, e := range m.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (m Meta) Len() int {
	return len(m.entries)
}

// Keys returns the keys in insertion order.
func (m Meta) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Range calls f for each entry in order until f returns false.
func (m Meta) Range(f func(key string, value any) bool) {
	for _, e := range m.entries {
		if !f(e.key, e.value) {
			return
		}
	}
}

// Map returns the entries as a newly allocated map.
func (m Meta) Map() map[string]any {
	out := make(map[string]any, len(m.entries))
	for _, e := range m.entries {
		out[e.key] = e.value
	}
	return out
}

// Equal reports whether m and other hold the same entries in the same order.
func (m Meta) Equal(other Meta) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}
	for i := range m.entries {
		if m.entries[i].key != other.entries[i].key ||
			!reflect.DeepEqual(m.entries[i].value, other.entries[i].value) {
			return false
		}
	}
	return true
}

func (m Meta) String() string {
	s := "{"
	for i, e := range m.entries {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s:%v", e.key, e.value)
	}
	return s + "}"
}
