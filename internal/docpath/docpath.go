// Package docpath parses and validates slash-separated document database
// paths such as "users/42" or "users/42/orders".
//
// Segments alternate collection IDs and document IDs, so a document path
// has an even number of segments and a collection path an odd number.
package docpath

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxPathBytes is the largest accepted path, in UTF-8 bytes.
const MaxPathBytes = 1500

// ErrInvalidPath is wrapped by every error returned from this package.
var ErrInvalidPath = errors.New("invalid path")

// Path is a parsed, NFC-normalized path.
type Path struct {
	segments []string
}

// Parse validates p and returns its parsed form.
// Surrounding slashes are trimmed; empty segments are rejected.
func Parse(p string) (Path, error) {
	p = norm.NFC.String(strings.Trim(p, "/"))
	if p == "" {
		return Path{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if len(p) > MaxPathBytes {
		return Path{}, fmt.Errorf("%w: path exceeds %d bytes", ErrInvalidPath, MaxPathBytes)
	}

	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return Path{}, fmt.Errorf("%w: segment %d: %v", ErrInvalidPath, i, err)
		}
	}
	return Path{segments: segments}, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for constant paths.
func MustParse(p string) Path {
	path, err := Parse(p)
	if err != nil {
		panic(err)
	}
	return path
}

func validateSegment(seg string) error {
	switch {
	case seg == "":
		return errors.New("empty segment")
	case seg == "." || seg == "..":
		return fmt.Errorf("%q is not a valid ID", seg)
	case len(seg) > 4 && strings.HasPrefix(seg, "__") && strings.HasSuffix(seg, "__"):
		return fmt.Errorf("%q is a reserved ID", seg)
	}
	return nil
}

// ValidateDocument parses p and requires it to name a document.
func ValidateDocument(p string) (Path, error) {
	path, err := Parse(p)
	if err != nil {
		return Path{}, err
	}
	if !path.IsDocument() {
		return Path{}, fmt.Errorf("%w: %q has an odd number of segments, not a document", ErrInvalidPath, p)
	}
	return path, nil
}

// ValidateCollection parses p and requires it to name a collection.
func ValidateCollection(p string) (Path, error) {
	path, err := Parse(p)
	if err != nil {
		return Path{}, err
	}
	if !path.IsCollection() {
		return Path{}, fmt.Errorf("%w: %q has an even number of segments, not a collection", ErrInvalidPath, p)
	}
	return path, nil
}

// IsDocument reports whether the path names a document.
func (p Path) IsDocument() bool {
	return len(p.segments) > 0 && len(p.segments)%2 == 0
}

// IsCollection reports whether the path names a collection.
func (p Path) IsCollection() bool {
	return len(p.segments)%2 == 1
}

// ID returns the last segment.
func (p Path) ID() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent returns the path with the last segment removed.
// The parent of a single-segment path is the zero Path.
func (p Path) Parent() Path {
	if len(p.segments) <= 1 {
		return Path{}
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

// Child appends segments to the path, validating each.
func (p Path) Child(segments ...string) (Path, error) {
	for _, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return Path{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
	}
	joined := append(append([]string{}, p.segments...), segments...)
	return Parse(strings.Join(joined, "/"))
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// IsZero reports whether p is the zero Path.
func (p Path) IsZero() bool {
	return len(p.segments) == 0
}

// String returns the slash-joined path.
func (p Path) String() string {
	return strings.Join(p.segments, "/")
}
