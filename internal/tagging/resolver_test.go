package tagging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docbridge/internal/docpath"
	"github.com/roach88/docbridge/internal/value"
)

// recordingHandle echoes paths back as references and records each call.
type recordingHandle struct {
	calls []string
}

func (h *recordingHandle) DocumentReference(path string) (value.Reference, error) {
	h.calls = append(h.calls, path)
	return value.Reference{Path: path}, nil
}

func TestResolveScalarsPassThrough(t *testing.T) {
	h := &recordingHandle{}
	for _, v := range []value.Value{value.Null{}, value.Bool(false), value.Int(3), value.Float(-1.5), value.String("s")} {
		got, err := Resolve(v, h)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.Empty(t, h.calls)
}

func TestResolveReferenceCallsHandleOnce(t *testing.T) {
	h := &recordingHandle{}

	got, err := Resolve(value.Pair{Tag: value.TagReference, Payload: value.String("users/42")}, h)
	require.NoError(t, err)

	assert.Equal(t, []string{"users/42"}, h.calls)
	assert.Equal(t, value.Reference{Path: "users/42"}, got)
}

func TestResolveReferenceReturnsHandleResult(t *testing.T) {
	h := HandleFunc(func(path string) (value.Reference, error) {
		return value.Reference{Path: "tenants/a/" + path}, nil
	})

	got, err := Resolve(value.Pair{Tag: value.TagReference, Payload: value.String("users/42")}, h)
	require.NoError(t, err)
	assert.Equal(t, value.Reference{Path: "tenants/a/users/42"}, got)
}

func TestResolveInvalidReferencePath(t *testing.T) {
	in := value.MapOf(value.F("owner", value.Pair{Tag: value.TagReference, Payload: value.String("users")}))

	_, err := Resolve(in, PathHandle{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidReferencePath))
	assert.True(t, errors.Is(err, docpath.ErrInvalidPath), "handle error should be wrapped")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "owner", e.Path)
	assert.Equal(t, value.TagReference, e.Tag)
}

func TestResolveReferenceWithoutHandle(t *testing.T) {
	_, err := Resolve(value.Pair{Tag: value.TagReference, Payload: value.String("users/1")}, nil)
	assert.True(t, errors.Is(err, ErrInvalidReferencePath))
}

func TestResolveUnknownTag(t *testing.T) {
	_, err := Resolve(value.Pair{Tag: value.Tag("FOO"), Payload: value.NewMap(0)}, &recordingHandle{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTypeTag))
	assert.Contains(t, err.Error(), `"FOO"`)
}

func TestResolveArrayUnion(t *testing.T) {
	got, err := Resolve(value.Pair{
		Tag:     value.TagArrayUnion,
		Payload: value.Array{value.Int(1), value.Int(2)},
	}, &recordingHandle{})
	require.NoError(t, err)

	assert.Equal(t, value.ArrayUnion{Elements: value.Array{value.Int(1), value.Int(2)}}, got)
}

func TestResolveNestedDomainTypesInTransforms(t *testing.T) {
	h := &recordingHandle{}
	in := value.Pair{
		Tag: value.TagArrayRemove,
		Payload: value.Array{
			value.Pair{Tag: value.TagGeoPoint, Payload: value.Array{value.Float(1), value.Float(2)}},
			value.Pair{Tag: value.TagReference, Payload: value.String("cities/la")},
			value.MapOf(value.F("at", value.Pair{Tag: value.TagTimestamp, Payload: value.Array{value.Int(5), value.Int(6)}})),
		},
	}

	got, err := Resolve(in, h)
	require.NoError(t, err)

	want := value.ArrayRemove{Elements: value.Array{
		value.GeoPoint{Latitude: 1, Longitude: 2},
		value.Reference{Path: "cities/la"},
		value.MapOf(value.F("at", value.Timestamp{Seconds: 5, Nanos: 6})),
	}}
	assert.True(t, value.Equal(want, got), "got %#v", got)
	assert.Equal(t, []string{"cities/la"}, h.calls)
}

func TestResolveSentinels(t *testing.T) {
	h := &recordingHandle{}
	for _, payload := range []value.Value{value.Null{}, value.NewMap(0), value.Array{}} {
		got, err := Resolve(value.Pair{Tag: value.TagServerTimestamp, Payload: payload}, h)
		require.NoError(t, err)
		assert.Equal(t, value.ServerTimestamp{}, got)

		got, err = Resolve(value.Pair{Tag: value.TagDelete, Payload: payload}, h)
		require.NoError(t, err)
		assert.Equal(t, value.Delete{}, got)
	}
}

func TestResolveLenientNumbers(t *testing.T) {
	h := &recordingHandle{}

	got, err := Resolve(value.Pair{Tag: value.TagGeoPoint, Payload: value.Array{value.Int(1), value.Float(2.5)}}, h)
	require.NoError(t, err)
	assert.Equal(t, value.GeoPoint{Latitude: 1, Longitude: 2.5}, got)

	got, err = Resolve(value.Pair{Tag: value.TagTimestamp, Payload: value.Array{value.Float(12), value.Float(0)}}, h)
	require.NoError(t, err)
	assert.Equal(t, value.Timestamp{Seconds: 12}, got)
}

func TestResolveGeoPointFieldForm(t *testing.T) {
	payload := value.MapOf(
		value.F("longitude", value.Float(-0.25)),
		value.F("latitude", value.Int(51)),
	)
	got, err := Resolve(value.Pair{Tag: value.TagGeoPoint, Payload: payload}, nil)
	require.NoError(t, err)
	assert.Equal(t, value.GeoPoint{Latitude: 51, Longitude: -0.25}, got)
}

func TestResolveBlobByteArray(t *testing.T) {
	got, err := Resolve(value.Pair{Tag: value.TagBlob, Payload: value.Array{value.Int(104), value.Int(105)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Blob("hi"), got)
}

func TestResolveMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		in   value.Pair
	}{
		{"geopoint not array", value.Pair{Tag: value.TagGeoPoint, Payload: value.String("1,2")}},
		{"geopoint short", value.Pair{Tag: value.TagGeoPoint, Payload: value.Array{value.Float(1)}}},
		{"geopoint string element", value.Pair{Tag: value.TagGeoPoint, Payload: value.Array{value.Float(1), value.String("2")}}},
		{"geopoint fields missing", value.Pair{Tag: value.TagGeoPoint, Payload: value.MapOf(value.F("latitude", value.Int(1)), value.F("lng", value.Int(2)))}},
		{"geopoint fields extra", value.Pair{Tag: value.TagGeoPoint, Payload: value.MapOf(value.F("latitude", value.Int(1)), value.F("longitude", value.Int(2)), value.F("alt", value.Int(3)))}},
		{"geopoint field string", value.Pair{Tag: value.TagGeoPoint, Payload: value.MapOf(value.F("latitude", value.Int(1)), value.F("longitude", value.String("2")))}},
		{"timestamp fraction", value.Pair{Tag: value.TagTimestamp, Payload: value.Array{value.Float(1.5), value.Int(0)}}},
		{"timestamp nanos range", value.Pair{Tag: value.TagTimestamp, Payload: value.Array{value.Int(1), value.Int(1e9)}}},
		{"reference not string", value.Pair{Tag: value.TagReference, Payload: value.Int(42)}},
		{"blob bad base64", value.Pair{Tag: value.TagBlob, Payload: value.String("!!")}},
		{"blob byte overflow", value.Pair{Tag: value.TagBlob, Payload: value.Array{value.Int(256)}}},
		{"increment string", value.Pair{Tag: value.TagIncrement, Payload: value.String("1")}},
		{"union not array", value.Pair{Tag: value.TagArrayUnion, Payload: value.Int(1)}},
		{"server timestamp payload", value.Pair{Tag: value.TagServerTimestamp, Payload: value.Int(1)}},
		{"delete payload", value.Pair{Tag: value.TagDelete, Payload: value.String("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.in, &recordingHandle{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload), "got %v", err)

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.in.Tag, e.Tag)
		})
	}
}

func TestResolveRejectsDomainValuesInTaggedInput(t *testing.T) {
	_, err := Resolve(value.Array{value.GeoPoint{}}, &recordingHandle{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
	assert.Contains(t, err.Error(), "[0]")
}

func TestResolveAbortsOnFirstError(t *testing.T) {
	h := &recordingHandle{}
	in := value.Array{
		value.Pair{Tag: value.TagReference, Payload: value.String("a/1")},
		value.Pair{Tag: value.Tag("NOPE"), Payload: value.Null{}},
		value.Pair{Tag: value.TagReference, Payload: value.String("a/2")},
	}

	got, err := Resolve(in, h)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []string{"a/1"}, h.calls)
}

func TestResolveRejectsCycles(t *testing.T) {
	m := value.NewMap(1)
	m.Set("loop", value.Array{m})

	_, err := Resolve(m, &recordingHandle{})
	assert.True(t, errors.Is(err, ErrCyclicValue))
}

func TestResolveHandleErrorIsDeterministic(t *testing.T) {
	h := HandleFunc(func(path string) (value.Reference, error) {
		return value.Reference{}, fmt.Errorf("bad path %q", path)
	})
	in := value.Pair{Tag: value.TagReference, Payload: value.String("x/y")}

	_, err1 := Resolve(in, h)
	_, err2 := Resolve(in, h)
	require.Error(t, err1)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestCheckBoundarySafe(t *testing.T) {
	assert.NoError(t, CheckBoundarySafe(value.MapOf(
		value.F("p", value.Pair{Tag: value.TagIncrement, Payload: value.Int(1)}),
	)))

	err := CheckBoundarySafe(value.MapOf(value.F("p", value.Blob("x"))))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	err = CheckBoundarySafe(value.Pair{Tag: value.TagArrayUnion, Payload: value.Array{value.Delete{}}})
	assert.Error(t, err)
}
