package value

// Tag identifies the domain type carried by a Pair.
type Tag string

// The closed set of type tags.
const (
	TagGeoPoint        Tag = "GEOPOINT"
	TagTimestamp       Tag = "TIMESTAMP"
	TagReference       Tag = "REFERENCE"
	TagServerTimestamp Tag = "SERVER_TIMESTAMP"
	TagBlob            Tag = "BLOB"
	TagIncrement       Tag = "INCREMENT"
	TagArrayUnion      Tag = "ARRAY_UNION"
	TagArrayRemove     Tag = "ARRAY_REMOVE"
	TagDelete          Tag = "DELETE"
)

// Tags lists every known tag in declaration order.
var Tags = []Tag{
	TagGeoPoint,
	TagTimestamp,
	TagReference,
	TagServerTimestamp,
	TagBlob,
	TagIncrement,
	TagArrayUnion,
	TagArrayRemove,
	TagDelete,
}

// Known reports whether t is in the closed tag set.
func (t Tag) Known() bool {
	switch t {
	case TagGeoPoint, TagTimestamp, TagReference, TagServerTimestamp, TagBlob,
		TagIncrement, TagArrayUnion, TagArrayRemove, TagDelete:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	return string(t)
}

// ParseTag converts s to a Tag. Unknown strings are returned as-is with
// ok=false so callers can report them instead of dropping them.
func ParseTag(s string) (t Tag, ok bool) {
	t = Tag(s)
	return t, t.Known()
}
