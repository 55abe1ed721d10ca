// Package bridge is the host call boundary. Values leaving the database
// layer are tagged and encoded; bytes arriving from the host are decoded
// and resolved against a reference handle. Failures are reported to the
// host as stable codes.
package bridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
	"github.com/roach88/docbridge/internal/wire"
)

// ErrCodec marks encoding and decoding failures.
var ErrCodec = errors.New("codec error")

// Bridge converts values crossing the host boundary.
// The zero value uses path-only references, the JSON codec and no logging.
type Bridge struct {
	// Handle resolves REFERENCE payloads. Nil means tagging.PathHandle.
	Handle tagging.Handle

	// Codec encodes tagged values. Nil means wire.Default.
	Codec wire.Codec

	// Logger receives conversion diagnostics. Nil discards them.
	Logger *slog.Logger

	// MaxDepth overrides tagging.DefaultMaxDepth when positive.
	MaxDepth int
}

func (b *Bridge) handle() tagging.Handle {
	if b.Handle == nil {
		return tagging.PathHandle{}
	}
	return b.Handle
}

func (b *Bridge) codec() wire.Codec {
	if b.Codec == nil {
		return wire.Default
	}
	return b.Codec
}

func (b *Bridge) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return b.Logger
}

func (b *Bridge) options() []tagging.Option {
	if b.MaxDepth > 0 {
		return []tagging.Option{tagging.WithMaxDepth(b.MaxDepth)}
	}
	return nil
}

// Export tags v and encodes it for the host.
func (b *Bridge) Export(v value.Value) ([]byte, error) {
	tagged, err := tagging.Tag(v, b.options()...)
	if err != nil {
		b.logFailure("export", err)
		return nil, err
	}
	data, err := b.codec().Marshal(tagged)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrCodec, b.codec().Name(), err)
		b.logFailure("export", err)
		return nil, err
	}
	b.logger().Debug("exported value", "codec", b.codec().Name(), "kind", value.Kind(v), "bytes", len(data))
	return data, nil
}

// Import decodes host bytes and resolves them into client values.
func (b *Bridge) Import(data []byte) (value.Value, error) {
	tagged, err := b.codec().Unmarshal(data)
	if err != nil {
		if _, ok := tagging.KindOf(err); !ok {
			err = fmt.Errorf("%w: %s: %w", ErrCodec, b.codec().Name(), err)
		}
		b.logFailure("import", err)
		return nil, err
	}
	v, err := tagging.Resolve(tagged, b.handle(), b.options()...)
	if err != nil {
		b.logFailure("import", err)
		return nil, err
	}
	b.logger().Debug("imported value", "codec", b.codec().Name(), "kind", value.Kind(v), "bytes", len(data))
	return v, nil
}

// ImportDocument is Import for document data: the top-level value must be
// a map.
func (b *Bridge) ImportDocument(data []byte) (*value.Map, error) {
	v, err := b.Import(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*value.Map)
	if !ok {
		return nil, &tagging.Error{
			Kind:    tagging.UnsupportedType,
			Message: fmt.Sprintf("document data must be a map, got %s", value.Kind(v)),
		}
	}
	return m, nil
}

func (b *Bridge) logFailure(op string, err error) {
	f := HostError(err)
	b.logger().Warn("conversion failed", "op", op, "code", f.Code, "path", f.Path, "error", err)
}
