package store

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/docbridge/internal/value"
)

// fieldWriter applies new field values over existing ones, evaluating
// field transforms at a single point in time.
type fieldWriter struct {
	now value.Timestamp
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// apply computes the value stored at path when v is written over old
// (nil if absent). With merge, nested maps merge field by field instead of
// replacing. keep is false when the field must be removed.
func (w fieldWriter) apply(path string, old, v value.Value, merge, allowDelete bool) (result value.Value, keep bool, err error) {
	switch x := v.(type) {
	case value.Delete:
		if !allowDelete {
			return nil, false, invalidf("%s: delete is only allowed in Update or a merge Set", path)
		}
		return nil, false, nil
	case value.ServerTimestamp:
		return w.now, true, nil
	case value.Increment:
		if !value.IsNumber(x.Delta) {
			return nil, false, invalidf("%s: increment delta must be a number, got %s", path, value.Kind(x.Delta))
		}
		return increment(old, x.Delta), true, nil
	case value.ArrayUnion:
		if err := checkArray(path, x.Elements); err != nil {
			return nil, false, err
		}
		out := append(value.Array{}, arrayOf(old)...)
		for _, e := range x.Elements {
			if !value.Contains(out, e) {
				out = append(out, e)
			}
		}
		return out, true, nil
	case value.ArrayRemove:
		if err := checkArray(path, x.Elements); err != nil {
			return nil, false, err
		}
		out := value.Array{}
		for _, e := range arrayOf(old) {
			if !value.Contains(x.Elements, e) {
				out = append(out, e)
			}
		}
		return out, true, nil
	case *value.Map:
		return w.applyMap(path, old, x, merge, allowDelete)
	case value.Array:
		if err := checkArray(path, x); err != nil {
			return nil, false, err
		}
		return x, true, nil
	case value.Pair:
		return nil, false, invalidf("%s: unresolved %s value", path, x.Tag)
	case nil:
		return nil, false, invalidf("%s: nil value", path)
	default:
		return v, true, nil
	}
}

func (w fieldWriter) applyMap(path string, old value.Value, m *value.Map, merge, allowDelete bool) (value.Value, bool, error) {
	if m == nil {
		return nil, false, invalidf("%s: nil map", path)
	}
	var base *value.Map
	if merge {
		base, _ = old.(*value.Map)
	}
	out := base.Clone()
	if out == nil {
		out = value.NewMap(m.Len())
	}
	for _, f := range m.Fields() {
		if f.Key == "" {
			return nil, false, invalidf("%s: empty field name", path)
		}
		var prev value.Value
		if base != nil {
			prev, _ = base.Get(f.Key)
		}
		nv, keep, err := w.apply(joinField(path, f.Key), prev, f.Value, merge, allowDelete && merge)
		if err != nil {
			return nil, false, err
		}
		if !keep {
			out.Delete(f.Key)
			continue
		}
		out.Set(f.Key, nv)
	}
	return out, true, nil
}

// checkArray rejects values that cannot be stored inside an array:
// field transforms anywhere below it and unresolved pairs.
func checkArray(path string, arr value.Array) error {
	for i, e := range arr {
		if err := checkNested(fmt.Sprintf("%s[%d]", path, i), e); err != nil {
			return err
		}
	}
	return nil
}

func checkNested(path string, v value.Value) error {
	switch x := v.(type) {
	case nil:
		return invalidf("%s: nil value", path)
	case value.Pair:
		return invalidf("%s: unresolved %s value", path, x.Tag)
	case value.Array:
		return checkArray(path, x)
	case *value.Map:
		if x == nil {
			return invalidf("%s: nil map", path)
		}
		for _, f := range x.Fields() {
			if err := checkNested(joinField(path, f.Key), f.Value); err != nil {
				return err
			}
		}
	default:
		if value.IsTransform(v) {
			return invalidf("%s: %s cannot be used inside an array", path, value.Kind(v))
		}
	}
	return nil
}

func arrayOf(v value.Value) value.Array {
	if arr, ok := v.(value.Array); ok {
		return arr
	}
	return nil
}

// increment adds delta to old. A non-numeric old counts as zero; two
// integers stay an integer and saturate instead of wrapping.
func increment(old, delta value.Value) value.Value {
	switch base := old.(type) {
	case value.Int:
		switch d := delta.(type) {
		case value.Int:
			return addSaturating(base, d)
		case value.Float:
			return value.Float(float64(base) + float64(d))
		}
	case value.Float:
		switch d := delta.(type) {
		case value.Int:
			return base + value.Float(d)
		case value.Float:
			return base + d
		}
	}
	return delta
}

func addSaturating(a, b value.Int) value.Int {
	sum := a + b
	switch {
	case a > 0 && b > 0 && sum < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}

func joinField(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// splitFieldPath splits a dotted Update path into field names.
func splitFieldPath(p string) ([]string, error) {
	parts := strings.Split(p, ".")
	for _, part := range parts {
		if part == "" {
			return nil, invalidf("invalid field path %q", p)
		}
	}
	return parts, nil
}

// checkFieldPaths rejects Update paths where one is a prefix of another,
// e.g. "a" and "a.b".
func checkFieldPaths(paths []string) error {
	for i, a := range paths {
		for _, b := range paths[i+1:] {
			if a == b || strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".") {
				return invalidf("field paths %q and %q conflict", a, b)
			}
		}
	}
	return nil
}
