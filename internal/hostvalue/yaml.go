package hostvalue

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

// Local YAML tags for database types.
const (
	TagGeoPoint        = "!geopoint"
	TagTimestamp       = "!timestamp"
	TagRef             = "!ref"
	TagServerTimestamp = "!serverTimestamp"
	TagBlob            = "!blob"
	TagIncrement       = "!increment"
	TagArrayUnion      = "!arrayUnion"
	TagArrayRemove     = "!arrayRemove"
	TagDelete          = "!delete"
)

// maxAliasExpansions bounds alias expansion (billion-laughs guard).
const maxAliasExpansions = 10000

// FromYAML parses a single YAML document. An empty document is null.
func FromYAML(data []byte) (value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return value.Null{}, nil
	}
	d := &yamlDecoder{expanding: make(map[*yaml.Node]bool)}
	v, err := d.decode(doc.Content[0], 0)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return v, nil
}

type yamlDecoder struct {
	expanding  map[*yaml.Node]bool
	expansions int
}

func (d *yamlDecoder) decode(n *yaml.Node, depth int) (value.Value, error) {
	if depth > tagging.DefaultMaxDepth {
		return nil, &tagging.Error{Kind: tagging.DepthExceeded, Message: fmt.Sprintf("line %d: nesting too deep", n.Line)}
	}

	switch n.Kind {
	case yaml.AliasNode:
		if d.expanding[n.Alias] {
			return nil, &tagging.Error{Kind: tagging.CyclicValue, Message: fmt.Sprintf("line %d: alias *%s refers to itself", n.Line, n.Value)}
		}
		d.expansions++
		if d.expansions > maxAliasExpansions {
			return nil, fmt.Errorf("line %d: too many alias expansions", n.Line)
		}
		d.expanding[n.Alias] = true
		defer delete(d.expanding, n.Alias)
		return d.decode(n.Alias, depth+1)

	case yaml.MappingNode:
		if n.Tag != "" && n.ShortTag() != "!!map" {
			return nil, fmt.Errorf("line %d: tag %s cannot be applied to a mapping", n.Line, n.Tag)
		}
		d.expanding[n] = true
		defer delete(d.expanding, n)
		m := value.NewMap(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: map keys must be scalars", keyNode.Line)
			}
			v, err := d.decode(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, v)
		}
		return m, nil

	case yaml.SequenceNode:
		d.expanding[n] = true
		defer delete(d.expanding, n)
		arr, err := d.decodeSeq(n, depth)
		if err != nil {
			return nil, err
		}
		switch n.ShortTag() {
		case "!!seq":
			return arr, nil
		case TagGeoPoint:
			return geoPointFromSeq(n, arr)
		case TagArrayUnion:
			return value.ArrayUnion{Elements: arr}, nil
		case TagArrayRemove:
			return value.ArrayRemove{Elements: arr}, nil
		default:
			return nil, fmt.Errorf("line %d: tag %s cannot be applied to a sequence", n.Line, n.Tag)
		}

	case yaml.ScalarNode:
		return decodeScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

func (d *yamlDecoder) decodeSeq(n *yaml.Node, depth int) (value.Array, error) {
	arr := make(value.Array, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := d.decode(c, depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func geoPointFromSeq(n *yaml.Node, arr value.Array) (value.Value, error) {
	if len(arr) != 2 {
		return nil, fmt.Errorf("line %d: %s needs [latitude, longitude]", n.Line, TagGeoPoint)
	}
	coords := make([]float64, 2)
	for i, v := range arr {
		switch x := v.(type) {
		case value.Int:
			coords[i] = float64(x)
		case value.Float:
			coords[i] = float64(x)
		default:
			return nil, fmt.Errorf("line %d: %s coordinates must be numbers", n.Line, TagGeoPoint)
		}
	}
	return value.GeoPoint{Latitude: coords[0], Longitude: coords[1]}, nil
}

func decodeScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return value.Float(f), nil
	case "!!str":
		return value.String(n.Value), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return value.TimestampOf(t), nil
	case "!!binary":
		return decodeBase64(n)

	case TagTimestamp:
		t, err := time.Parse(time.RFC3339Nano, n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", n.Line, TagTimestamp, err)
		}
		return value.TimestampOf(t), nil
	case TagRef:
		if n.Value == "" {
			return nil, fmt.Errorf("line %d: %s needs a path", n.Line, TagRef)
		}
		return value.Reference{Path: n.Value}, nil
	case TagServerTimestamp:
		return value.ServerTimestamp{}, nil
	case TagDelete:
		return value.Delete{}, nil
	case TagBlob:
		return decodeBase64(n)
	case TagIncrement:
		delta, err := parseNumber(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", n.Line, TagIncrement, err)
		}
		return value.Increment{Delta: delta}, nil
	case TagArrayUnion:
		if n.Value == "" {
			return value.ArrayUnion{Elements: value.Array{}}, nil
		}
	case TagArrayRemove:
		if n.Value == "" {
			return value.ArrayRemove{Elements: value.Array{}}, nil
		}
	}
	return nil, fmt.Errorf("line %d: unsupported tag %s", n.Line, n.Tag)
}

func decodeBase64(n *yaml.Node) (value.Value, error) {
	clean := strings.Join(strings.Fields(n.Value), "")
	b, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid base64: %w", n.Line, err)
	}
	return value.Blob(b), nil
}

func parseNumber(s string) (value.Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("not a number: " + strconv.Quote(s))
	}
	return value.Float(f), nil
}

// ToYAML renders v as YAML using the local tags for database types.
// Map key order is kept. Tag pairs are not accepted; resolve them first.
func ToYAML(v value.Value) ([]byte, error) {
	n, err := toNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func scalar(tag, val string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: val}
}

func toNode(v value.Value) (*yaml.Node, error) {
	switch x := v.(type) {
	case value.Null:
		return scalar("!!null", "null"), nil
	case value.Bool:
		return scalar("!!bool", strconv.FormatBool(bool(x))), nil
	case value.Int:
		return scalar("!!int", strconv.FormatInt(int64(x), 10)), nil
	case value.Float:
		return scalar("!!float", formatYAMLFloat(float64(x))), nil
	case value.String:
		return scalar("!!str", string(x)), nil
	case value.Array:
		return seqNode("", x)
	case *value.Map:
		if x == nil {
			return nil, errors.New("nil map")
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range x.Fields() {
			child, err := toNode(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Key, err)
			}
			n.Content = append(n.Content, scalar("!!str", f.Key), child)
		}
		return n, nil
	case value.GeoPoint:
		n, err := seqNode(TagGeoPoint, value.Array{value.Float(x.Latitude), value.Float(x.Longitude)})
		if err != nil {
			return nil, err
		}
		n.Style = yaml.FlowStyle
		return n, nil
	case value.Timestamp:
		return scalar(TagTimestamp, x.Time().Format(time.RFC3339Nano)), nil
	case value.Reference:
		return scalar(TagRef, x.Path), nil
	case value.ServerTimestamp:
		return scalar(TagServerTimestamp, ""), nil
	case value.Blob:
		return scalar(TagBlob, base64.StdEncoding.EncodeToString(x)), nil
	case value.Increment:
		switch d := x.Delta.(type) {
		case value.Int:
			return scalar(TagIncrement, strconv.FormatInt(int64(d), 10)), nil
		case value.Float:
			return scalar(TagIncrement, strconv.FormatFloat(float64(d), 'g', -1, 64)), nil
		}
		return nil, fmt.Errorf("increment delta must be a number, got %s", value.Kind(x.Delta))
	case value.ArrayUnion:
		return seqNode(TagArrayUnion, x.Elements)
	case value.ArrayRemove:
		return seqNode(TagArrayRemove, x.Elements)
	case value.Delete:
		return scalar(TagDelete, ""), nil
	default:
		return nil, fmt.Errorf("cannot render %s as yaml", value.Kind(v))
	}
}

func seqNode(tag string, arr value.Array) (*yaml.Node, error) {
	if tag == "" {
		tag = "!!seq"
	}
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: tag}
	for i, elem := range arr {
		child, err := toNode(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		n.Content = append(n.Content, child)
	}
	return n, nil
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
