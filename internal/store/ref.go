package store

import (
	"fmt"

	"github.com/roach88/docbridge/internal/docpath"
	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

var _ tagging.Handle = (*Store)(nil)

// DocumentReference validates path as a document path and returns its
// normalized reference. It makes *Store a tagging.Handle.
func (s *Store) DocumentReference(path string) (value.Reference, error) {
	p, err := docpath.ValidateDocument(path)
	if err != nil {
		return value.Reference{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return value.Reference{Path: p.String()}, nil
}

// documentPath validates a reference passed to a read or write.
func documentPath(ref value.Reference) (docpath.Path, error) {
	p, err := docpath.ValidateDocument(ref.Path)
	if err != nil {
		return docpath.Path{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return p, nil
}

func collectionPath(collection string) (docpath.Path, error) {
	p, err := docpath.ValidateCollection(collection)
	if err != nil {
		return docpath.Path{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return p, nil
}
