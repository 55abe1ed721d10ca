package hostvalue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
	"github.com/roach88/docbridge/internal/wire"
)

// Format identifies a host document format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q: use .yaml, .yml, .json or .cue", filepath.Ext(path))
	}
}

// Load reads a host document from path, choosing the parser by extension.
func Load(path string) (value.Value, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, format, filepath.Base(path))
}

// Parse reads a host document in the given format. name is used in CUE
// error positions.
func Parse(data []byte, format Format, name string) (value.Value, error) {
	switch format {
	case FormatYAML:
		return FromYAML(data)
	case FormatJSON:
		return FromJSON(data)
	case FormatCUE:
		return FromCUE(data, name)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// FromJSON reads JSON in tagged wire form and resolves it with path-only
// references, so {"$type":"GEOPOINT","$value":[1,2]} becomes a GeoPoint.
func FromJSON(data []byte) (value.Value, error) {
	tagged, err := wire.JSON{}.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return tagging.Resolve(tagged, tagging.PathHandle{})
}

// FromCUE evaluates a CUE document. The result must be concrete.
// Struct fields keep declaration order; bytes become blobs.
func FromCUE(data []byte, filename string) (value.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile cue: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("cue value is not concrete: %w", err)
	}
	return fromCUE(v, 0)
}

func fromCUE(v cue.Value, depth int) (value.Value, error) {
	if depth > tagging.DefaultMaxDepth {
		return nil, &tagging.Error{Kind: tagging.DepthExceeded, Message: "cue nesting too deep"}
	}

	switch v.Kind() {
	case cue.NullKind:
		return value.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return value.Bool(b), nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return value.Int(i), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return value.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return value.String(s), nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, err
		}
		return value.Blob(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		arr := value.Array{}
		for iter.Next() {
			elem, err := fromCUE(iter.Value(), depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", len(arr), err)
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		m := value.NewMap(0)
		for iter.Next() {
			label := iter.Label()
			elem, err := fromCUE(iter.Value(), depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", label, err)
			}
			m.Set(label, elem)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported cue kind %s", v.Kind())
	}
}
