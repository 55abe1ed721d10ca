package value

import (
	"slices"
	"unicode/utf16"
)

// Map is a mapping of unique string keys to values.
// Keys iterate in insertion order; no sorting is ever applied implicitly.
//
// Map is a pointer type so a value tree can share (or, by mistake, cycle
// back to) the same map. Package tagging rejects cycles.
type Map struct {
	keys    []string
	entries map[string]Value
}

func (*Map) value() {}

// Field is a key/value pair used for ordered Map construction.
type Field struct {
	Key   string
	Value Value
}

// F is a shorthand for Field.
// Example: MapOf(F("name", String("ada")), F("age", Int(36)))
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// NewMap creates an empty map with room for n fields.
func NewMap(n int) *Map {
	return &Map{
		keys:    make([]string, 0, n),
		entries: make(map[string]Value, n),
	}
}

// MapOf creates a map from fields in order.
// A repeated key keeps its first position and its last value.
func MapOf(fields ...Field) *Map {
	m := NewMap(len(fields))
	for _, f := range fields {
		m.Set(f.Key, f.Value)
	}
	return m
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (m *Map) Set(key string, v Value) {
	if m.entries == nil {
		m.entries = make(map[string]Value)
	}
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key. It is a no-op for a missing key.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Len returns the number of fields.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
// The returned slice is a copy.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Fields returns the fields in insertion order.
func (m *Map) Fields() []Field {
	if m == nil {
		return nil
	}
	fields := make([]Field, len(m.keys))
	for i, k := range m.keys {
		fields[i] = Field{Key: k, Value: m.entries[k]}
	}
	return fields
}

// Range calls fn for each field in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.entries[k]) {
			return
		}
	}
}

// Clone returns a shallow copy: same keys and order, same child values.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := NewMap(len(m.keys))
	for _, k := range m.keys {
		out.Set(k, m.entries[k])
	}
	return out
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Use only where insertion order is unavailable, e.g. data read back from a
// database that does not keep field order.
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// compareKeysUTF16 compares strings by UTF-16 code units.
// Go's string comparison uses UTF-8 bytes, which orders supplementary
// characters differently.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
