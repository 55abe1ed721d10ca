package tagging

import (
	"github.com/roach88/docbridge/internal/docpath"
	"github.com/roach88/docbridge/internal/value"
)

// Handle constructs document references for REFERENCE pairs.
//
// DocumentReference must be synchronous and must not perform network I/O.
// It returns an error when the path is malformed by the database's rules.
type Handle interface {
	DocumentReference(path string) (value.Reference, error)
}

// HandleFunc adapts a function to the Handle interface.
type HandleFunc func(path string) (value.Reference, error)

// DocumentReference calls f(path).
func (f HandleFunc) DocumentReference(path string) (value.Reference, error) {
	return f(path)
}

// PathHandle is a Handle that only validates paths with docpath rules and
// returns the normalized reference. It needs no database.
type PathHandle struct{}

// DocumentReference implements Handle.
func (PathHandle) DocumentReference(path string) (value.Reference, error) {
	p, err := docpath.ValidateDocument(path)
	if err != nil {
		return value.Reference{}, err
	}
	return value.Reference{Path: p.String()}, nil
}
