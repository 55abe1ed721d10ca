package value

import (
	"bytes"
	"math"
)

// Equal reports whether a and b are structurally equal.
//
// Int and Float are distinct (Int(1) != Float(1)). NaN equals NaN so that
// array transforms can match it. Map equality ignores key order; compare
// Keys() separately when order matters. Both values must be acyclic.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && floatEqual(float64(x), float64(y))
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		return ok && arrayEqual(x, y)
	case *Map:
		y, ok := b.(*Map)
		return ok && mapEqual(x, y)
	case GeoPoint:
		y, ok := b.(GeoPoint)
		return ok && floatEqual(x.Latitude, y.Latitude) && floatEqual(x.Longitude, y.Longitude)
	case Timestamp:
		y, ok := b.(Timestamp)
		return ok && x == y
	case Reference:
		y, ok := b.(Reference)
		return ok && x == y
	case ServerTimestamp:
		_, ok := b.(ServerTimestamp)
		return ok
	case Blob:
		y, ok := b.(Blob)
		return ok && bytes.Equal(x, y)
	case Increment:
		y, ok := b.(Increment)
		return ok && Equal(x.Delta, y.Delta)
	case ArrayUnion:
		y, ok := b.(ArrayUnion)
		return ok && arrayEqual(x.Elements, y.Elements)
	case ArrayRemove:
		y, ok := b.(ArrayRemove)
		return ok && arrayEqual(x.Elements, y.Elements)
	case Delete:
		_, ok := b.(Delete)
		return ok
	case Pair:
		y, ok := b.(Pair)
		return ok && x.Tag == y.Tag && Equal(x.Payload, y.Payload)
	}
	return false
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func arrayEqual(a, b Array) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func mapEqual(a, b *Map) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.Range(func(k string, av Value) bool {
		bv, ok := b.Get(k)
		if !ok || !Equal(av, bv) {
			equal = false
		}
		return equal
	})
	return equal
}

// Contains reports whether arr holds an element Equal to v.
func Contains(arr Array, v Value) bool {
	for _, e := range arr {
		if Equal(e, v) {
			return true
		}
	}
	return false
}
