package value

import (
	"fmt"
	"time"
)

// Value is a sealed interface over the supported variants.
// Only types in this package implement it.
type Value interface {
	value() // Sealed
}

// Null represents an explicit null.
// Using a concrete type keeps nil interfaces out of value trees.
type Null struct{}

func (Null) value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

// Int is an integer number.
type Int int64

func (Int) value() {}

// Float is a double-precision number.
type Float float64

func (Float) value() {}

// String is a UTF-8 string value.
type String string

func (String) value() {}

// Array is an ordered sequence of values.
type Array []Value

func (Array) value() {}

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

func (GeoPoint) value() {}

// Timestamp is a point in time with nanosecond precision.
// Nanos is always in [0, 1e9).
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

func (Timestamp) value() {}

// TimestampOf converts a time.Time into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// Reference is a document reference, identified by its path relative to
// the database root (e.g. "users/42").
type Reference struct {
	Path string
}

func (Reference) value() {}

// ServerTimestamp is the write-only marker asking the database to store
// its own commit time in the field.
type ServerTimestamp struct{}

func (ServerTimestamp) value() {}

// Blob is an opaque byte sequence.
type Blob []byte

func (Blob) value() {}

// Increment adds Delta to the stored numeric field at write time.
// Delta is an Int or a Float.
type Increment struct {
	Delta Value
}

func (Increment) value() {}

// ArrayUnion appends each element not already present in the stored array.
type ArrayUnion struct {
	Elements Array
}

func (ArrayUnion) value() {}

// ArrayRemove removes every occurrence of each element from the stored array.
type ArrayRemove struct {
	Elements Array
}

func (ArrayRemove) value() {}

// Delete is the write-only marker removing a field from a document.
type Delete struct{}

func (Delete) value() {}

// Pair is the tagged form of a domain value: a type tag plus a payload made
// only of primitives, arrays and maps.
type Pair struct {
	Tag     Tag
	Payload Value
}

func (Pair) value() {}

// Kind returns a stable lowercase name for the variant of v.
// Used in error messages and CLI output.
func Kind(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case *Map:
		return "map"
	case GeoPoint:
		return "geopoint"
	case Timestamp:
		return "timestamp"
	case Reference:
		return "reference"
	case ServerTimestamp:
		return "server_timestamp"
	case Blob:
		return "blob"
	case Increment:
		return "increment"
	case ArrayUnion:
		return "array_union"
	case ArrayRemove:
		return "array_remove"
	case Delete:
		return "delete"
	case Pair:
		return "pair"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// IsDomain reports whether v is one of the database-domain variants,
// i.e. a value that needs a tag pair to cross the host boundary.
func IsDomain(v Value) bool {
	switch v.(type) {
	case GeoPoint, Timestamp, Reference, ServerTimestamp, Blob,
		Increment, ArrayUnion, ArrayRemove, Delete:
		return true
	}
	return false
}

// IsTransform reports whether v is a write-time field transform rather than
// a storable value.
func IsTransform(v Value) bool {
	switch v.(type) {
	case ServerTimestamp, Increment, ArrayUnion, ArrayRemove, Delete:
		return true
	}
	return false
}

// IsNumber reports whether v is an Int or a Float.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}
