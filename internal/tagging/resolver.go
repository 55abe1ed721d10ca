package tagging

import (
	"encoding/base64"
	"math"

	"github.com/roach88/docbridge/internal/value"
)

// Resolve rebuilds client values from the tagged form t.
//
// REFERENCE pairs call h.DocumentReference exactly once each; a rejected
// path fails with InvalidReferencePath wrapping the handle's error. A pair
// with a tag outside the tag set fails with UnknownTypeTag. Field-transform
// payloads are resolved recursively, so an ArrayUnion may carry GeoPoints,
// References or maps.
func Resolve(t value.Value, h Handle, opts ...Option) (value.Value, error) {
	w := newWalker(opts)
	r := &resolver{walker: w, handle: h}
	return r.resolve(t, 0)
}

type resolver struct {
	*walker
	handle Handle
}

func (r *resolver) resolve(t value.Value, depth int) (value.Value, error) {
	switch x := t.(type) {
	case value.Null, value.Bool, value.Int, value.Float, value.String:
		return t, nil

	case *value.Map:
		return r.walkMap(x, depth, r.resolve)

	case value.Array:
		out, err := r.walkArray(x, depth, r.resolve)
		if err != nil {
			return nil, err
		}
		return out, nil

	case value.Pair:
		return r.resolvePair(x, depth)

	case nil:
		return nil, r.fail(UnsupportedType, "nil value")

	default:
		return nil, r.fail(UnsupportedType, "%s is not a tagged value", value.Kind(t))
	}
}

func (r *resolver) resolvePair(p value.Pair, depth int) (value.Value, error) {
	switch p.Tag {
	case value.TagGeoPoint:
		if m, ok := p.Payload.(*value.Map); ok {
			return r.geoPointFields(p, m)
		}
		nums, err := r.numbers(p, 2)
		if err != nil {
			return nil, err
		}
		return value.GeoPoint{Latitude: nums[0], Longitude: nums[1]}, nil

	case value.TagTimestamp:
		return r.timestamp(p)

	case value.TagReference:
		path, ok := p.Payload.(value.String)
		if !ok {
			return nil, r.malformed(p, "expected string path, got %s", value.Kind(p.Payload))
		}
		if r.handle == nil {
			e := r.fail(InvalidReferencePath, "no database handle to resolve %q", string(path))
			e.Tag = p.Tag
			return nil, e
		}
		ref, err := r.handle.DocumentReference(string(path))
		if err != nil {
			e := r.fail(InvalidReferencePath, "path %q rejected", string(path))
			e.Tag = p.Tag
			e.Err = err
			return nil, e
		}
		return ref, nil

	case value.TagServerTimestamp:
		if !isEmptyPayload(p.Payload) {
			return nil, r.malformed(p, "expected empty payload, got %s", value.Kind(p.Payload))
		}
		return value.ServerTimestamp{}, nil

	case value.TagBlob:
		return r.blob(p)

	case value.TagIncrement:
		if !value.IsNumber(p.Payload) {
			return nil, r.malformed(p, "expected number, got %s", value.Kind(p.Payload))
		}
		return value.Increment{Delta: p.Payload}, nil

	case value.TagArrayUnion, value.TagArrayRemove:
		elems, ok := p.Payload.(value.Array)
		if !ok {
			return nil, r.malformed(p, "expected array, got %s", value.Kind(p.Payload))
		}
		resolved, err := r.walkArray(elems, depth+1, r.resolve)
		if err != nil {
			return nil, err
		}
		if p.Tag == value.TagArrayUnion {
			return value.ArrayUnion{Elements: resolved}, nil
		}
		return value.ArrayRemove{Elements: resolved}, nil

	case value.TagDelete:
		if !isEmptyPayload(p.Payload) {
			return nil, r.malformed(p, "expected empty payload, got %s", value.Kind(p.Payload))
		}
		return value.Delete{}, nil

	default:
		e := r.fail(UnknownTypeTag, "unknown type tag %q", string(p.Tag))
		e.Tag = p.Tag
		return nil, e
	}
}

func (r *resolver) malformed(p value.Pair, format string, args ...any) *Error {
	e := r.fail(MalformedPayload, format, args...)
	e.Message = string(p.Tag) + ": " + e.Message
	e.Tag = p.Tag
	return e
}

// numbers reads a payload of exactly n numbers. Ints are widened, since a
// host may drop the fraction of a whole float.
func (r *resolver) numbers(p value.Pair, n int) ([]float64, error) {
	arr, ok := p.Payload.(value.Array)
	if !ok || len(arr) != n {
		return nil, r.malformed(p, "expected %d numbers", n)
	}
	out := make([]float64, n)
	for i, elem := range arr {
		switch x := elem.(type) {
		case value.Float:
			out[i] = float64(x)
		case value.Int:
			out[i] = float64(x)
		default:
			return nil, r.malformed(p, "element %d: expected number, got %s", i, value.Kind(elem))
		}
	}
	return out, nil
}

// geoPointFields reads the {latitude, longitude} form of a GEOPOINT payload.
func (r *resolver) geoPointFields(p value.Pair, m *value.Map) (value.Value, error) {
	if m.Len() != 2 {
		return nil, r.malformed(p, "expected fields latitude and longitude")
	}
	var coords [2]float64
	for i, key := range []string{"latitude", "longitude"} {
		v, ok := m.Get(key)
		if !ok {
			return nil, r.malformed(p, "missing field %s", key)
		}
		switch x := v.(type) {
		case value.Float:
			coords[i] = float64(x)
		case value.Int:
			coords[i] = float64(x)
		default:
			return nil, r.malformed(p, "%s: expected number, got %s", key, value.Kind(v))
		}
	}
	return value.GeoPoint{Latitude: coords[0], Longitude: coords[1]}, nil
}

func (r *resolver) timestamp(p value.Pair) (value.Value, error) {
	arr, ok := p.Payload.(value.Array)
	if !ok || len(arr) != 2 {
		return nil, r.malformed(p, "expected [seconds, nanoseconds]")
	}
	secs, ok := wholeNumber(arr[0])
	if !ok {
		return nil, r.malformed(p, "seconds must be an integer, got %s", value.Kind(arr[0]))
	}
	nanos, ok := wholeNumber(arr[1])
	if !ok || nanos < 0 || nanos >= 1e9 {
		return nil, r.malformed(p, "nanoseconds must be an integer in [0, 1e9)")
	}
	return value.Timestamp{Seconds: secs, Nanos: int32(nanos)}, nil
}

// wholeNumber accepts an Int, or a Float with no fractional part.
func wholeNumber(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Int:
		return int64(x), true
	case value.Float:
		f := float64(x)
		if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// blob accepts base64 text or an array of byte values.
func (r *resolver) blob(p value.Pair) (value.Value, error) {
	switch x := p.Payload.(type) {
	case value.String:
		b, err := base64.StdEncoding.DecodeString(string(x))
		if err != nil {
			e := r.malformed(p, "invalid base64")
			e.Err = err
			return nil, e
		}
		return value.Blob(b), nil
	case value.Array:
		b := make(value.Blob, len(x))
		for i, elem := range x {
			n, ok := elem.(value.Int)
			if !ok || n < 0 || n > 255 {
				return nil, r.malformed(p, "element %d is not a byte", i)
			}
			b[i] = byte(n)
		}
		return b, nil
	default:
		return nil, r.malformed(p, "expected base64 string or byte array, got %s", value.Kind(p.Payload))
	}
}

// isEmptyPayload accepts the marker payloads a host may send for sentinels.
func isEmptyPayload(v value.Value) bool {
	switch x := v.(type) {
	case nil, value.Null:
		return true
	case *value.Map:
		return x.Len() == 0
	case value.Array:
		return len(x) == 0
	}
	return false
}
