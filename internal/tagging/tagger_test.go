package tagging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docbridge/internal/value"
)

func TestTagScalarsPassThrough(t *testing.T) {
	scalars := []value.Value{
		value.Null{},
		value.Bool(true),
		value.Int(-7),
		value.Float(3.25),
		value.String("hello"),
	}
	for _, v := range scalars {
		t.Run(value.Kind(v), func(t *testing.T) {
			got, err := Tag(v)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		})
	}
}

func TestTagGeoPoint(t *testing.T) {
	got, err := Tag(value.GeoPoint{Latitude: 1.0, Longitude: 2.0})
	require.NoError(t, err)

	assert.Equal(t, value.Pair{
		Tag:     value.TagGeoPoint,
		Payload: value.Array{value.Float(1.0), value.Float(2.0)},
	}, got)
}

func TestTagDomainPayloads(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
		want value.Pair
	}{
		{
			name: "timestamp",
			in:   value.Timestamp{Seconds: 1700000000, Nanos: 42},
			want: value.Pair{Tag: value.TagTimestamp, Payload: value.Array{value.Int(1700000000), value.Int(42)}},
		},
		{
			name: "reference",
			in:   value.Reference{Path: "users/42"},
			want: value.Pair{Tag: value.TagReference, Payload: value.String("users/42")},
		},
		{
			name: "server timestamp",
			in:   value.ServerTimestamp{},
			want: value.Pair{Tag: value.TagServerTimestamp, Payload: value.Null{}},
		},
		{
			name: "blob",
			in:   value.Blob{0x00, 0xff, 0x10},
			want: value.Pair{Tag: value.TagBlob, Payload: value.String("AP8Q")},
		},
		{
			name: "increment int",
			in:   value.Increment{Delta: value.Int(5)},
			want: value.Pair{Tag: value.TagIncrement, Payload: value.Int(5)},
		},
		{
			name: "increment float",
			in:   value.Increment{Delta: value.Float(0.5)},
			want: value.Pair{Tag: value.TagIncrement, Payload: value.Float(0.5)},
		},
		{
			name: "array union",
			in:   value.ArrayUnion{Elements: value.Array{value.Int(1), value.Int(2)}},
			want: value.Pair{Tag: value.TagArrayUnion, Payload: value.Array{value.Int(1), value.Int(2)}},
		},
		{
			name: "array remove",
			in:   value.ArrayRemove{Elements: value.Array{value.String("x")}},
			want: value.Pair{Tag: value.TagArrayRemove, Payload: value.Array{value.String("x")}},
		},
		{
			name: "delete",
			in:   value.Delete{},
			want: value.Pair{Tag: value.TagDelete, Payload: value.Null{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tag(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagPreservesMapOrder(t *testing.T) {
	in := value.MapOf(
		value.F("b", value.Int(1)),
		value.F("a", value.GeoPoint{Latitude: 3, Longitude: 4}),
		value.F("c", value.String("x")),
	)

	got, err := Tag(in)
	require.NoError(t, err)

	m, ok := got.(*value.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	// Input untouched
	a, _ := in.Get("a")
	assert.Equal(t, value.GeoPoint{Latitude: 3, Longitude: 4}, a)
}

func TestTagNestedStructures(t *testing.T) {
	in := value.MapOf(
		value.F("owner", value.Reference{Path: "users/1"}),
		value.F("history", value.Array{
			value.MapOf(value.F("at", value.Timestamp{Seconds: 10})),
			value.Array{value.Blob("hi")},
		}),
	)

	got, err := Tag(in)
	require.NoError(t, err)

	want := value.MapOf(
		value.F("owner", value.Pair{Tag: value.TagReference, Payload: value.String("users/1")}),
		value.F("history", value.Array{
			value.MapOf(value.F("at", value.Pair{Tag: value.TagTimestamp, Payload: value.Array{value.Int(10), value.Int(0)}})),
			value.Array{value.Pair{Tag: value.TagBlob, Payload: value.String("aGk=")}},
		}),
	)
	assert.True(t, value.Equal(want, got), "got %#v", got)
	require.NoError(t, CheckBoundarySafe(got))
}

func TestTagTransformPayloadWithDomainValues(t *testing.T) {
	in := value.ArrayUnion{Elements: value.Array{
		value.GeoPoint{Latitude: 10, Longitude: 20},
		value.Reference{Path: "cities/sf"},
	}}

	got, err := Tag(in)
	require.NoError(t, err)

	assert.Equal(t, value.Pair{
		Tag: value.TagArrayUnion,
		Payload: value.Array{
			value.Pair{Tag: value.TagGeoPoint, Payload: value.Array{value.Float(10), value.Float(20)}},
			value.Pair{Tag: value.TagReference, Payload: value.String("cities/sf")},
		},
	}, got)
}

func TestTagRejectsSelfReferentialMap(t *testing.T) {
	m := value.NewMap(1)
	m.Set("self", m)

	_, err := Tag(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicValue))
	assert.True(t, IsCycleError(err))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "self", e.Path)
}

func TestTagRejectsSelfReferentialArray(t *testing.T) {
	a := make(value.Array, 1)
	a[0] = a

	_, err := Tag(a)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, CyclicValue, kind)
}

func TestTagRejectsIndirectCycle(t *testing.T) {
	root := value.NewMap(1)
	inner := value.MapOf(value.F("back", value.Array{root}))
	root.Set("inner", inner)

	_, err := Tag(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicValue))
	assert.Contains(t, err.Error(), "inner.back[0]")
}

func TestTagRejectsCycleInsideTransform(t *testing.T) {
	a := make(value.Array, 1)
	a[0] = value.ArrayUnion{Elements: a}

	_, err := Tag(a)
	assert.True(t, errors.Is(err, ErrCyclicValue))
}

func TestTagAllowsSharedSubtrees(t *testing.T) {
	shared := value.MapOf(value.F("k", value.Int(1)))
	in := value.MapOf(value.F("a", shared), value.F("b", shared))

	got, err := Tag(in)
	require.NoError(t, err)
	assert.True(t, value.Equal(in, got))
}

func TestTagDepthLimit(t *testing.T) {
	var v value.Value = value.String("leaf")
	for i := 0; i < DefaultMaxDepth+10; i++ {
		v = value.Array{v}
	}

	_, err := Tag(v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDepthExceeded))

	_, err = Tag(v, WithMaxDepth(DefaultMaxDepth+20))
	assert.NoError(t, err)
}

func TestTagErrorPath(t *testing.T) {
	in := value.MapOf(value.F("profile", value.MapOf(
		value.F("tags", value.Array{
			value.String("a"),
			value.String("b"),
			value.Pair{Tag: value.TagBlob, Payload: value.String("")},
		}),
	)))

	_, err := Tag(in)
	require.Error(t, err)
	assert.EqualError(t, err, "UNSUPPORTED_TYPE at profile.tags[2]: value is already tagged (BLOB)")
}

func TestTagErrorPathQuotesUnusualKeys(t *testing.T) {
	in := value.MapOf(value.F("a.b", value.MapOf(value.F("c", nil))))

	_, err := Tag(in)
	require.Error(t, err)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, `["a.b"].c`, e.Path)
	assert.Equal(t, UnsupportedType, e.Kind)
}

func TestTagRejectsUnsupported(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
	}{
		{"nil interface", nil},
		{"nil map", (*value.Map)(nil)},
		{"pair", value.Pair{Tag: value.TagDelete, Payload: value.Null{}}},
		{"non-numeric increment", value.Increment{Delta: value.String("1")}},
		{"nanos too large", value.Timestamp{Seconds: 1, Nanos: 1_500_000_000}},
		{"negative nanos", value.Timestamp{Seconds: 1, Nanos: -1}},
		{"bad timestamp nested", value.MapOf(value.F("at", value.Array{value.Timestamp{Nanos: 1e9}}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tag(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedType))
		})
	}
}

func TestTagTimestampBoundsRoundTrip(t *testing.T) {
	for _, ts := range []value.Timestamp{
		{Seconds: -1, Nanos: 0},
		{Seconds: 1, Nanos: 999_999_999},
	} {
		tagged, err := Tag(ts)
		require.NoError(t, err)
		back, err := Resolve(tagged, PathHandle{})
		require.NoError(t, err)
		assert.Equal(t, ts, back)
	}
}
