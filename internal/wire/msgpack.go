package wire

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

// MsgPack encodes tagged values as MessagePack.
// It uses the same map shape for pairs as JSON, keeps map key order and
// preserves the int/float distinction natively. Non-finite floats are
// allowed.
type MsgPack struct{}

// Name returns "msgpack".
func (MsgPack) Name() string { return "msgpack" }

// Marshal serializes a tagged value to MessagePack bytes.
func (MsgPack) Marshal(v value.Value) ([]byte, error) {
	if err := tagging.CheckBoundarySafe(v); err != nil {
		return nil, fmt.Errorf("msgpack: %w", err)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeMsgPack(enc, v); err != nil {
		return nil, fmt.Errorf("msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeMsgPack(enc *msgpack.Encoder, v value.Value) error {
	switch x := v.(type) {
	case value.Null:
		return enc.EncodeNil()
	case value.Bool:
		return enc.EncodeBool(bool(x))
	case value.Int:
		return enc.EncodeInt(int64(x))
	case value.Float:
		return enc.EncodeFloat64(float64(x))
	case value.String:
		return enc.EncodeString(string(x))
	case value.Array:
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for i, elem := range x {
			if err := encodeMsgPack(enc, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		return nil
	case *value.Map:
		if needsEscape(x) {
			return encodeMsgPackPair(enc, MapTag, x, encodeMsgPackMap)
		}
		return encodeMsgPackMap(enc, x)
	case value.Pair:
		return encodeMsgPackPair(enc, string(x.Tag), x.Payload, encodeMsgPack)
	default:
		return fmt.Errorf("unsupported value %s", value.Kind(v))
	}
}

func encodeMsgPackMap(enc *msgpack.Encoder, v value.Value) error {
	m := v.(*value.Map)
	if err := enc.EncodeMapLen(m.Len()); err != nil {
		return err
	}
	for _, f := range m.Fields() {
		if err := enc.EncodeString(f.Key); err != nil {
			return err
		}
		if err := encodeMsgPack(enc, f.Value); err != nil {
			return fmt.Errorf("value for key %q: %w", f.Key, err)
		}
	}
	return nil
}

func encodeMsgPackPair(enc *msgpack.Encoder, tag string, payload value.Value, encode func(*msgpack.Encoder, value.Value) error) error {
	if err := enc.EncodeMapLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(TypeKey); err != nil {
		return err
	}
	if err := enc.EncodeString(tag); err != nil {
		return err
	}
	if err := enc.EncodeString(ValueKey); err != nil {
		return err
	}
	if err := encode(enc, payload); err != nil {
		return fmt.Errorf("%s payload: %w", tag, err)
	}
	return nil
}

// Unmarshal parses MessagePack bytes into a tagged value.
// A bin value (which the encoder never emits) is read as a BLOB pair so
// hosts that send raw bytes still round-trip.
func (MsgPack) Unmarshal(data []byte) (value.Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	raw, err := decodeMsgPack(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("msgpack: %w", err)
	}
	v, err := interpret(raw)
	if err != nil {
		return nil, fmt.Errorf("msgpack: %w", err)
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("msgpack: trailing data after top-level value")
	}
	return v, nil
}

func decodeMsgPack(dec *msgpack.Decoder, depth int) (value.Value, error) {
	if depth > maxDecodeDepth {
		return nil, fmt.Errorf("nesting exceeds max depth %d", maxDecodeDepth)
	}
	c, err := dec.PeekCode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return nil, err
		}
		return value.Null{}, nil

	case c == msgpcode.True || c == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return nil, err
		}
		return value.Bool(b), nil

	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return nil, err
		}
		return value.Float(f), nil

	case msgpcode.IsFixedNum(c) || (c >= msgpcode.Uint8 && c <= msgpcode.Int64):
		n, err := dec.DecodeInt64()
		if err != nil {
			return nil, err
		}
		return value.Int(n), nil

	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		return value.String(s), nil

	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		return value.Pair{Tag: value.TagBlob, Payload: value.String(base64.StdEncoding.EncodeToString(b))}, nil

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		arr := make(value.Array, 0, min(n, 1024))
		for i := 0; i < n; i++ {
			elem, err := decodeMsgPack(dec, depth+1)
			if err == nil {
				elem, err = interpret(elem)
			}
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr = append(arr, elem)
		}
		return arr, nil

	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		m := value.NewMap(min(n, 1024))
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}
			elem, err := decodeMsgPack(dec, depth+1)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", key, err)
			}
			m.Set(key, elem)
		}
		if m.Has(TypeKey) {
			return m, nil
		}
		out, err := interpretFields(m)
		if err != nil {
			return nil, err
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported msgpack code 0x%02x", c)
	}
}
