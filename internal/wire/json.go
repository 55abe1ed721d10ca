package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

// JSON encodes tagged values as JSON text.
//
// Differences from encoding/json:
//  1. Map keys keep insertion order (never sorted)
//  2. No HTML escaping (< > & are NOT escaped), U+2028/U+2029 are literal
//  3. Strings and keys are NFC normalized
//  4. Floats always carry a fraction or exponent, so 2.0 decodes as a float
//  5. NaN and ±Inf are rejected (not representable in JSON)
type JSON struct{}

// Name returns "json".
func (JSON) Name() string { return "json" }

// Marshal serializes a tagged value to JSON.
func (JSON) Marshal(v value.Value) ([]byte, error) {
	if err := tagging.CheckBoundarySafe(v); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v value.Value) error {
	switch x := v.(type) {
	case value.Null:
		buf.WriteString("null")
	case value.Bool:
		buf.WriteString(strconv.FormatBool(bool(x)))
	case value.Int:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case value.Float:
		s, err := formatFloat(float64(x))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case value.String:
		return writeJSONString(buf, string(x))
	case value.Array:
		buf.WriteByte('[')
		for i, elem := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *value.Map:
		if needsEscape(x) {
			return writeJSONPair(buf, MapTag, x, writeJSONObject)
		}
		return writeJSONObject(buf, x)
	case value.Pair:
		return writeJSONPair(buf, string(x.Tag), x.Payload, writeJSON)
	default:
		return fmt.Errorf("unsupported value %s", value.Kind(v))
	}
	return nil
}

func writeJSONObject(buf *bytes.Buffer, v value.Value) error {
	m := v.(*value.Map)
	buf.WriteByte('{')
	for i, f := range m.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, f.Key); err != nil {
			return fmt.Errorf("key %q: %w", f.Key, err)
		}
		buf.WriteByte(':')
		if err := writeJSON(buf, f.Value); err != nil {
			return fmt.Errorf("value for key %q: %w", f.Key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONPair(buf *bytes.Buffer, tag string, payload value.Value, write func(*bytes.Buffer, value.Value) error) error {
	buf.WriteString(`{"` + TypeKey + `":`)
	if err := writeJSONString(buf, tag); err != nil {
		return err
	}
	buf.WriteString(`,"` + ValueKey + `":`)
	if err := write(buf, payload); err != nil {
		return fmt.Errorf("%s payload: %w", tag, err)
	}
	buf.WriteByte('}')
	return nil
}

// formatFloat renders f like encoding/json does, then forces a fraction
// onto whole numbers.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite float %v is not representable in JSON", f)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// writeJSONString writes an NFC-normalized JSON string.
// Only control characters, backslash and quote are escaped.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false) // <, >, & must NOT be escaped
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds trailing newline, remove it
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. Escape sequences are walked
// pairwise so an escaped backslash followed by "u2028" text is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// Unmarshal parses JSON into a tagged value, keeping object key order.
// A {"$type": "MAP", "$value": {...}} escape decodes to the plain map.
// Integers become value.Int; numbers with a fraction or exponent become
// value.Float.
func (JSON) Unmarshal(data []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	raw, err := decodeJSON(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	v, err := interpret(raw)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("json: trailing data after top-level value")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder, depth int) (value.Value, error) {
	if depth > maxDecodeDepth {
		return nil, fmt.Errorf("nesting exceeds max depth %d", maxDecodeDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(t), nil
	case string:
		return value.String(t), nil
	case json.Number:
		return parseNumber(t)
	case json.Delim:
		switch t {
		case '[':
			arr := value.Array{}
			for dec.More() {
				elem, err := decodeJSON(dec, depth+1)
				if err == nil {
					elem, err = interpret(elem)
				}
				if err != nil {
					return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return nil, err
			}
			return arr, nil
		case '{':
			m := value.NewMap(0)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				elem, err := decodeJSON(dec, depth+1)
				if err != nil {
					return nil, fmt.Errorf("object[%q]: %w", key, err)
				}
				m.Set(key, elem)
			}
			if _, err := dec.Token(); err != nil { // '}'
				return nil, err
			}
			if m.Has(TypeKey) {
				return m, nil
			}
			out, err := interpretFields(m)
			if err != nil {
				return nil, err
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func parseNumber(n json.Number) (value.Value, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.Int(i), nil
		}
		// Out of int64 range; keep the magnitude as a float.
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", s, err)
	}
	return value.Float(f), nil
}
