package fsclient

import (
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/roach88/docbridge/internal/docpath"
	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

var _ tagging.Handle = Handle{}

// Handle resolves REFERENCE payloads against a Firestore client.
type Handle struct {
	Client *firestore.Client
}

// DocumentReference returns the reference for path, or an error when the
// client rejects it.
func (h Handle) DocumentReference(path string) (value.Reference, error) {
	p, err := docpath.ValidateDocument(path)
	if err != nil {
		return value.Reference{}, err
	}
	if h.Client == nil {
		return value.Reference{Path: p.String()}, nil
	}
	ref := h.Client.Doc(p.String())
	if ref == nil {
		return value.Reference{}, fmt.Errorf("firestore rejected document path %q", p)
	}
	return value.Reference{Path: RelativePath(ref)}, nil
}
