package tagging

import "github.com/roach88/docbridge/internal/value"

// CheckBoundarySafe verifies that t is in tagged form: only null, booleans,
// numbers, strings, arrays, maps and pairs whose payloads are themselves
// boundary-safe. It does not check tags or payload shapes; Resolve does.
func CheckBoundarySafe(t value.Value, opts ...Option) error {
	w := newWalker(opts)
	_, err := w.check(t, 0)
	return err
}

func (w *walker) check(t value.Value, depth int) (value.Value, error) {
	switch x := t.(type) {
	case value.Null, value.Bool, value.Int, value.Float, value.String:
		return t, nil
	case *value.Map:
		return w.walkMap(x, depth, w.check)
	case value.Array:
		out, err := w.walkArray(x, depth, w.check)
		if err != nil {
			return nil, err
		}
		return out, nil
	case value.Pair:
		if err := w.checkDepth(depth + 1); err != nil {
			return nil, err
		}
		if _, err := w.check(x.Payload, depth+1); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, w.fail(UnsupportedType, "%s is not boundary-safe", value.Kind(t))
	}
}
