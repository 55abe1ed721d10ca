// Package wire encodes tagged values into bytes that cross the host
// boundary, and decodes them back.
//
// Codecs only accept tagged (boundary-safe) values; run tagging.Tag first.
// A pair is written as a two-field map {"$type": TAG, "$value": payload}.
// A user map that itself contains the key "$type" is escaped as
// {"$type": "MAP", "$value": {...}} so it cannot be mistaken for a pair.
package wire

import (
	"fmt"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

// Reserved keys and the escape tag of the pair encoding.
const (
	TypeKey  = "$type"
	ValueKey = "$value"
	MapTag   = "MAP"
)

// maxDecodeDepth bounds nesting while decoding untrusted input.
// Pairs add one level over the value they carry.
const maxDecodeDepth = 2 * tagging.DefaultMaxDepth

// Codec encodes and decodes tagged values.
type Codec interface {
	// Marshal serializes a tagged value.
	Marshal(v value.Value) ([]byte, error)
	// Unmarshal deserializes data into a tagged value.
	Unmarshal(data []byte) (value.Value, error)
	// Name returns the codec identifier used for diagnostics.
	Name() string
}

// Default is the default codec instance.
var Default Codec = JSON{}

// ByName returns the codec registered under name ("json" or "msgpack").
func ByName(name string) (Codec, error) {
	switch name {
	case "json", "":
		return JSON{}, nil
	case "msgpack":
		return MsgPack{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q: must be json or msgpack", name)
	}
}

// Names lists the available codec names.
var Names = []string{"json", "msgpack"}

// needsEscape reports whether a user map would be read back as a pair.
func needsEscape(m *value.Map) bool {
	return m.Has(TypeKey)
}

// Decoders build objects bottom-up. A decoded map that carries TypeKey is
// kept raw, with raw children, until its parent interprets it: only then
// is it known whether the map is a pair, a MAP escape, or the payload of
// an escape (a user map that happens to hold "$type").

// interpret turns a raw decoded value into its tagged form. Values that are
// not raw pair-shaped maps are returned unchanged.
func interpret(v value.Value) (value.Value, error) {
	m, ok := v.(*value.Map)
	if !ok || !m.Has(TypeKey) {
		return v, nil
	}
	return fromPairFields(m)
}

// interpretFields interprets each field of a map. Unlike interpret it never
// reads the map itself as a pair.
func interpretFields(m *value.Map) (*value.Map, error) {
	out := value.NewMap(m.Len())
	for _, f := range m.Fields() {
		v, err := interpret(f.Value)
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", f.Key, err)
		}
		out.Set(f.Key, v)
	}
	return out, nil
}

// fromPairFields interprets a raw decoded map that carries TypeKey.
// Unknown tags are kept so the resolver can report them.
func fromPairFields(m *value.Map) (value.Value, error) {
	for _, k := range m.Keys() {
		if k != TypeKey && k != ValueKey {
			return nil, fmt.Errorf("tagged map has unexpected key %q", k)
		}
	}
	typ, _ := m.Get(TypeKey)
	tag, ok := typ.(value.String)
	if !ok {
		return nil, fmt.Errorf("%s must be a string, got %s", TypeKey, value.Kind(typ))
	}
	payload, ok := m.Get(ValueKey)
	if !ok {
		payload = value.Null{}
	}
	if string(tag) == MapTag {
		escaped, ok := payload.(*value.Map)
		if !ok {
			return nil, fmt.Errorf("escaped map payload must be a map, got %s", value.Kind(payload))
		}
		if !escaped.Has(TypeKey) {
			// Decoded as an ordinary map, so already interpreted.
			return escaped, nil
		}
		return interpretFields(escaped)
	}
	payload, err := interpret(payload)
	if err != nil {
		return nil, fmt.Errorf("%s payload: %w", tag, err)
	}
	return value.Pair{Tag: value.Tag(tag), Payload: payload}, nil
}
