package tagging

import (
	"strconv"
	"strings"
	"unsafe"

	"github.com/roach88/docbridge/internal/value"
)

// DefaultMaxDepth is the nesting limit applied when WithMaxDepth is not given.
const DefaultMaxDepth = 256

// Option configures a Tag or Resolve call.
type Option func(*walker)

// WithMaxDepth sets the nesting limit. Values below 1 fall back to
// DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(w *walker) {
		if n > 0 {
			w.maxDepth = n
		}
	}
}

// walker holds the per-call state of one conversion.
// A walker is never shared between calls.
type walker struct {
	maxDepth int

	// ancestors holds the containers on the current descent path.
	// A container seen again while still on the path is a cycle; a
	// container shared by two siblings is not.
	ancestors map[containerKey]struct{}

	// segments is the field path to the value being visited.
	segments []segment
}

// containerKey identifies a map by pointer and an array by backing store.
type containerKey struct {
	m    *value.Map
	data *value.Value
	n    int
}

type segment struct {
	key   string
	index int
	isKey bool
}

func newWalker(opts []Option) *walker {
	w := &walker{
		maxDepth:  DefaultMaxDepth,
		ancestors: make(map[containerKey]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// enter records a container on the descent path.
// Returns false if the container is already an ancestor.
func (w *walker) enter(k containerKey) bool {
	if _, seen := w.ancestors[k]; seen {
		return false
	}
	w.ancestors[k] = struct{}{}
	return true
}

func (w *walker) leave(k containerKey) {
	delete(w.ancestors, k)
}

func mapKey(m *value.Map) containerKey {
	return containerKey{m: m}
}

// arrayKey returns the identity of an array's backing store.
// Empty arrays cannot contain themselves and report ok=false.
func arrayKey(a value.Array) (containerKey, bool) {
	if len(a) == 0 {
		return containerKey{}, false
	}
	return containerKey{data: unsafe.SliceData(a), n: len(a)}, true
}

func (w *walker) pushKey(k string) {
	w.segments = append(w.segments, segment{key: k, isKey: true})
}

func (w *walker) pushIndex(i int) {
	w.segments = append(w.segments, segment{index: i})
}

func (w *walker) pop() {
	w.segments = w.segments[:len(w.segments)-1]
}

// path renders the current field path, e.g. `profile.tags[2]` or
// `["a.b"].c`.
func (w *walker) path() string {
	var b strings.Builder
	for _, s := range w.segments {
		if !s.isKey {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
			continue
		}
		if isPlainKey(s.key) {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.key)
			continue
		}
		b.WriteByte('[')
		b.WriteString(strconv.Quote(s.key))
		b.WriteByte(']')
	}
	return b.String()
}

func isPlainKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func (w *walker) fail(kind ErrorKind, format string, args ...any) *Error {
	return newError(kind, w.path(), format, args...)
}

func (w *walker) checkDepth(depth int) error {
	if depth > w.maxDepth {
		return w.fail(DepthExceeded, "nesting exceeds max depth %d", w.maxDepth)
	}
	return nil
}

// walkMap applies fn to every field of m, building a new map in the same
// key order. It guards against cycles and excess depth.
func (w *walker) walkMap(m *value.Map, depth int, fn func(value.Value, int) (value.Value, error)) (value.Value, error) {
	if m == nil {
		return nil, w.fail(UnsupportedType, "nil map")
	}
	if err := w.checkDepth(depth); err != nil {
		return nil, err
	}
	k := mapKey(m)
	if !w.enter(k) {
		return nil, w.fail(CyclicValue, "map contains itself")
	}
	defer w.leave(k)

	out := value.NewMap(m.Len())
	for _, f := range m.Fields() {
		w.pushKey(f.Key)
		v, err := fn(f.Value, depth+1)
		if err != nil {
			return nil, err
		}
		w.pop()
		out.Set(f.Key, v)
	}
	return out, nil
}

// walkArray applies fn to every element of a, preserving length and order.
func (w *walker) walkArray(a value.Array, depth int, fn func(value.Value, int) (value.Value, error)) (value.Array, error) {
	if err := w.checkDepth(depth); err != nil {
		return nil, err
	}
	if k, ok := arrayKey(a); ok {
		if !w.enter(k) {
			return nil, w.fail(CyclicValue, "array contains itself")
		}
		defer w.leave(k)
	}

	out := make(value.Array, len(a))
	for i, elem := range a {
		w.pushIndex(i)
		v, err := fn(elem, depth+1)
		if err != nil {
			return nil, err
		}
		w.pop()
		out[i] = v
	}
	return out, nil
}
