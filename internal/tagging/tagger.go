package tagging

import (
	"encoding/base64"

	"github.com/roach88/docbridge/internal/value"
)

// Tag converts v into its boundary-safe tagged form.
//
// Maps and arrays are rebuilt with every child tagged; domain values become
// value.Pair; null, booleans, numbers and strings pass through unchanged.
// Tagging an already-tagged Pair fails with UnsupportedType.
func Tag(v value.Value, opts ...Option) (value.Value, error) {
	w := newWalker(opts)
	return w.tag(v, 0)
}

func (w *walker) tag(v value.Value, depth int) (value.Value, error) {
	switch x := v.(type) {
	case value.Null, value.Bool, value.Int, value.Float, value.String:
		return v, nil

	case *value.Map:
		return w.walkMap(x, depth, w.tag)

	case value.Array:
		out, err := w.walkArray(x, depth, w.tag)
		if err != nil {
			return nil, err
		}
		return out, nil

	case value.GeoPoint:
		return value.Pair{
			Tag:     value.TagGeoPoint,
			Payload: value.Array{value.Float(x.Latitude), value.Float(x.Longitude)},
		}, nil

	case value.Timestamp:
		if x.Nanos < 0 || x.Nanos >= 1e9 {
			return nil, w.fail(UnsupportedType, "timestamp nanoseconds %d out of range [0, 1e9)", x.Nanos)
		}
		return value.Pair{
			Tag:     value.TagTimestamp,
			Payload: value.Array{value.Int(x.Seconds), value.Int(x.Nanos)},
		}, nil

	case value.Reference:
		return value.Pair{Tag: value.TagReference, Payload: value.String(x.Path)}, nil

	case value.ServerTimestamp:
		return value.Pair{Tag: value.TagServerTimestamp, Payload: value.Null{}}, nil

	case value.Blob:
		return value.Pair{
			Tag:     value.TagBlob,
			Payload: value.String(base64.StdEncoding.EncodeToString(x)),
		}, nil

	case value.Increment:
		if !value.IsNumber(x.Delta) {
			return nil, w.fail(UnsupportedType, "increment delta must be a number, got %s", value.Kind(x.Delta))
		}
		return value.Pair{Tag: value.TagIncrement, Payload: x.Delta}, nil

	case value.ArrayUnion:
		elems, err := w.tagDepth(x.Elements, depth)
		if err != nil {
			return nil, err
		}
		return value.Pair{Tag: value.TagArrayUnion, Payload: elems}, nil

	case value.ArrayRemove:
		elems, err := w.tagDepth(x.Elements, depth)
		if err != nil {
			return nil, err
		}
		return value.Pair{Tag: value.TagArrayRemove, Payload: elems}, nil

	case value.Delete:
		return value.Pair{Tag: value.TagDelete, Payload: value.Null{}}, nil

	case value.Pair:
		return nil, w.fail(UnsupportedType, "value is already tagged (%s)", x.Tag)

	default:
		return nil, w.fail(UnsupportedType, "no tagging rule for %s", value.Kind(v))
	}
}

// tagDepth tags the elements of a field-transform payload. The payload
// counts as one level of nesting below the transform itself.
func (w *walker) tagDepth(elems value.Array, depth int) (value.Value, error) {
	out, err := w.walkArray(elems, depth+1, w.tag)
	if err != nil {
		return nil, err
	}
	return out, nil
}
