package wire

import (
	"errors"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleDocument() *value.Map {
	return value.MapOf(
		value.F("name", value.String("Ada <admin> & co")),
		value.F("age", value.Int(36)),
		value.F("score", value.Float(99.5)),
		value.F("ratio", value.Float(2)),
		value.F("active", value.Bool(true)),
		value.F("nickname", value.Null{}),
		value.F("home", value.GeoPoint{Latitude: 51.5, Longitude: -0.25}),
		value.F("joined", value.Timestamp{Seconds: 1700000000, Nanos: 5}),
		value.F("manager", value.Reference{Path: "users/7"}),
		value.F("avatar", value.Blob("hi")),
		value.F("updatedAt", value.ServerTimestamp{}),
		value.F("visits", value.Increment{Delta: value.Int(1)}),
		value.F("tags", value.ArrayUnion{Elements: value.Array{
			value.String("admin"),
			value.GeoPoint{Latitude: 1, Longitude: 2},
		}}),
		value.F("stale", value.Delete{}),
		value.F("legacy", value.MapOf(value.F("$type", value.String("user-defined")))),
	)
}

func TestJSONGoldenDocument(t *testing.T) {
	tagged, err := tagging.Tag(sampleDocument())
	require.NoError(t, err)

	data, err := JSON{}.Marshal(tagged)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "document", data)
}

func TestJSONGoldenTransforms(t *testing.T) {
	in := value.Array{
		value.ArrayRemove{Elements: value.Array{
			value.Reference{Path: "cities/la"},
			value.MapOf(value.F("b", value.Int(1)), value.F("a", value.Array{})),
		}},
		value.Float(1e-7),
		value.Float(1e21),
		value.Float(-3),
		value.String("line\u2028sep"),
	}
	tagged, err := tagging.Tag(in)
	require.NoError(t, err)

	data, err := JSON{}.Marshal(tagged)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "transforms", data)
}

func TestJSONRoundTripThroughResolve(t *testing.T) {
	doc := sampleDocument()
	tagged, err := tagging.Tag(doc)
	require.NoError(t, err)

	data, err := JSON{}.Marshal(tagged)
	require.NoError(t, err)

	decoded, err := JSON{}.Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, value.Equal(tagged, decoded))
	assert.Equal(t, doc.Keys(), decoded.(*value.Map).Keys())

	resolved, err := tagging.Resolve(decoded, tagging.PathHandle{})
	require.NoError(t, err)
	assert.True(t, value.Equal(doc, resolved))
}

func TestJSONDecodePreservesKeyOrder(t *testing.T) {
	v, err := JSON{}.Unmarshal([]byte(`{"b":1,"a":{"z":true,"y":null},"c":"x"}`))
	require.NoError(t, err)

	m := v.(*value.Map)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	inner, _ := m.Get("a")
	assert.Equal(t, []string{"z", "y"}, inner.(*value.Map).Keys())
}

func TestJSONNumbers(t *testing.T) {
	tests := []struct {
		in   string
		want value.Value
	}{
		{`42`, value.Int(42)},
		{`-7`, value.Int(-7)},
		{`2.0`, value.Float(2)},
		{`1e3`, value.Float(1000)},
		{`0.125`, value.Float(0.125)},
		{`18446744073709551616`, value.Float(18446744073709551616)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := JSON{}.Unmarshal([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{-0.5, "-0.5"},
		{123456789, "123456789.0"},
		{1e-7, "1e-7"},
		{1.5e-10, "1.5e-10"},
		{1e21, "1e+21"},
	}
	for _, tt := range tests {
		got, err := formatFloat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := formatFloat(math.NaN())
	assert.Error(t, err)
	_, err = formatFloat(math.Inf(-1))
	assert.Error(t, err)
}

func TestJSONStringRules(t *testing.T) {
	data, err := JSON{}.Marshal(value.Array{
		value.String("<b>&</b>"),
		value.String("cafe\u0301"),
		value.String("a\u2028b"),
		value.String(`a\u2028b`),
		value.String("tab\there"),
	})
	require.NoError(t, err)

	want := "[\"<b>&</b>\",\"caf\u00e9\",\"a\u2028b\",\"a\\\\u2028b\",\"tab\\there\"]"
	assert.Equal(t, want, string(data))
}

func TestJSONUnknownTagSurfacesAtResolve(t *testing.T) {
	v, err := JSON{}.Unmarshal([]byte(`{"$type":"FOO","$value":{}}`))
	require.NoError(t, err)

	pair, ok := v.(value.Pair)
	require.True(t, ok)
	assert.Equal(t, value.Tag("FOO"), pair.Tag)

	_, err = tagging.Resolve(v, tagging.PathHandle{})
	assert.True(t, errors.Is(err, tagging.ErrUnknownTypeTag))
}

func TestJSONPairWithoutValue(t *testing.T) {
	v, err := JSON{}.Unmarshal([]byte(`{"$type":"SERVER_TIMESTAMP"}`))
	require.NoError(t, err)
	assert.Equal(t, value.Pair{Tag: value.TagServerTimestamp, Payload: value.Null{}}, v)
}

func TestJSONUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ``},
		{"trailing data", `{} {}`},
		{"non-string tag", `{"$type":1,"$value":null}`},
		{"extra key on pair", `{"$type":"GEOPOINT","$value":[1,2],"x":1}`},
		{"escaped map not a map", `{"$type":"MAP","$value":[1]}`},
		{"truncated", `{"a":[1,2`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSON{}.Unmarshal([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestJSONMarshalRejectsUntaggedValues(t *testing.T) {
	_, err := JSON{}.Marshal(value.MapOf(value.F("blob", value.Blob("x"))))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tagging.ErrUnsupportedType))

	_, err = JSON{}.Marshal(value.Float(math.NaN()))
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	for _, name := range Names {
		c, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	_, err = ByName("xml")
	assert.Error(t, err)
}
