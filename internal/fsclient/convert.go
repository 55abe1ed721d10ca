package fsclient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/roach88/docbridge/internal/value"
)

// ToNative converts a resolved value to a Firestore write value. client
// builds document references and may only be nil if v contains none.
func ToNative(v value.Value, client *firestore.Client) (any, error) {
	switch x := v.(type) {
	case value.Null:
		return nil, nil
	case value.Bool:
		return bool(x), nil
	case value.Int:
		return int64(x), nil
	case value.Float:
		return float64(x), nil
	case value.String:
		return string(x), nil
	case value.Blob:
		return []byte(x), nil
	case value.GeoPoint:
		return &latlng.LatLng{Latitude: x.Latitude, Longitude: x.Longitude}, nil
	case value.Timestamp:
		return x.Time(), nil
	case value.Reference:
		if client == nil {
			return nil, errors.New("reference " + x.Path + " needs a client")
		}
		ref := client.Doc(x.Path)
		if ref == nil {
			return nil, fmt.Errorf("invalid document path %q", x.Path)
		}
		return ref, nil
	case value.ServerTimestamp:
		return firestore.ServerTimestamp, nil
	case value.Delete:
		return firestore.Delete, nil
	case value.Increment:
		switch d := x.Delta.(type) {
		case value.Int:
			return firestore.Increment(int64(d)), nil
		case value.Float:
			return firestore.Increment(float64(d)), nil
		}
		return nil, fmt.Errorf("increment delta must be a number, got %s", value.Kind(x.Delta))
	case value.ArrayUnion:
		elems, err := nativeArray(x.Elements, client)
		if err != nil {
			return nil, err
		}
		return firestore.ArrayUnion(elems...), nil
	case value.ArrayRemove:
		elems, err := nativeArray(x.Elements, client)
		if err != nil {
			return nil, err
		}
		return firestore.ArrayRemove(elems...), nil
	case value.Array:
		return nativeArray(x, client)
	case *value.Map:
		return NativeMap(x, client)
	default:
		return nil, fmt.Errorf("no firestore form for %s", value.Kind(v))
	}
}

// NativeMap converts a field map. Key order is lost: Firestore maps are
// unordered.
func NativeMap(m *value.Map, client *firestore.Client) (map[string]any, error) {
	if m == nil {
		return nil, errors.New("nil map")
	}
	out := make(map[string]any, m.Len())
	for _, f := range m.Fields() {
		nv, err := ToNative(f.Value, client)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		out[f.Key] = nv
	}
	return out, nil
}

func nativeArray(arr value.Array, client *firestore.Client) ([]any, error) {
	out := make([]any, len(arr))
	for i, e := range arr {
		nv, err := ToNative(e, client)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = nv
	}
	return out, nil
}

// FromNative converts Firestore snapshot data to a value. Maps come back
// with keys in UTF-16 order since Firestore keeps none.
func FromNative(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(x), nil
	case int:
		return value.Int(x), nil
	case int32:
		return value.Int(x), nil
	case int64:
		return value.Int(x), nil
	case float32:
		return value.Float(x), nil
	case float64:
		return value.Float(x), nil
	case string:
		return value.String(x), nil
	case []byte:
		return value.Blob(x), nil
	case time.Time:
		return value.TimestampOf(x), nil
	case *latlng.LatLng:
		if x == nil {
			return value.Null{}, nil
		}
		return value.GeoPoint{Latitude: x.GetLatitude(), Longitude: x.GetLongitude()}, nil
	case *firestore.DocumentRef:
		if x == nil {
			return value.Null{}, nil
		}
		return value.Reference{Path: RelativePath(x)}, nil
	case []any:
		arr := make(value.Array, len(x))
		for i, e := range x {
			ev, err := FromNative(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = ev
		}
		return arr, nil
	case map[string]any:
		return FromNativeMap(x)
	default:
		return nil, fmt.Errorf("unsupported firestore value of type %T", v)
	}
}

// FromNativeMap converts snapshot data such as DocumentSnapshot.Data().
func FromNativeMap(data map[string]any) (*value.Map, error) {
	unordered := value.NewMap(len(data))
	for k, e := range data {
		ev, err := FromNative(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		unordered.Set(k, ev)
	}
	out := value.NewMap(len(data))
	for _, k := range unordered.SortedKeys() {
		ev, _ := unordered.Get(k)
		out.Set(k, ev)
	}
	return out, nil
}

// RelativePath strips the "projects/*/databases/*/documents/" prefix from
// a document reference.
func RelativePath(ref *firestore.DocumentRef) string {
	const marker = "/documents/"
	if i := strings.Index(ref.Path, marker); i >= 0 {
		return ref.Path[i+len(marker):]
	}
	return ref.Path
}
