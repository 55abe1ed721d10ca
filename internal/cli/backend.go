package cli

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/roach88/docbridge/internal/fsclient"
	"github.com/roach88/docbridge/internal/store"
	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

// backend is the document database behind the document commands. It also
// resolves REFERENCE values read from host files.
type backend interface {
	tagging.Handle
	Set(ctx context.Context, ref value.Reference, fields *value.Map, merge bool) error
	Update(ctx context.Context, ref value.Reference, fields *value.Map) error
	Get(ctx context.Context, ref value.Reference) (*document, error)
	Add(ctx context.Context, collection string, fields *value.Map) (value.Reference, error)
	Delete(ctx context.Context, ref value.Reference) error
	List(ctx context.Context, collection string) ([]*document, error)
	Close() error
}

// document is a stored document as the commands print it. Seq is zero for
// Firestore, which has no write sequence.
type document struct {
	Ref        value.Reference
	Seq        int64
	CreateTime value.Timestamp
	UpdateTime value.Timestamp
	Data       *value.Map
}

// sqliteBackend drives a local store.
type sqliteBackend struct {
	*store.Store
}

func (b sqliteBackend) Set(ctx context.Context, ref value.Reference, fields *value.Map, merge bool) error {
	return b.Store.Set(ctx, ref, fields, store.SetOptions{Merge: merge})
}

func (b sqliteBackend) Get(ctx context.Context, ref value.Reference) (*document, error) {
	snap, err := b.Store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromSnapshot(snap), nil
}

func (b sqliteBackend) List(ctx context.Context, collection string) ([]*document, error) {
	snaps, err := b.Store.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	docs := make([]*document, len(snaps))
	for i, snap := range snaps {
		docs[i] = fromSnapshot(snap)
	}
	return docs, nil
}

func fromSnapshot(snap *store.Snapshot) *document {
	return &document{
		Ref:        snap.Ref,
		Seq:        snap.Seq,
		CreateTime: snap.CreateTime,
		UpdateTime: snap.UpdateTime,
		Data:       snap.Data,
	}
}

// firestoreBackend drives a Cloud Firestore project. FIRESTORE_EMULATOR_HOST
// is honored by the client.
type firestoreBackend struct {
	fsclient.DB
}

func (b firestoreBackend) Get(ctx context.Context, ref value.Reference) (*document, error) {
	doc, err := b.DB.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromFirestore(doc), nil
}

func (b firestoreBackend) List(ctx context.Context, collection string) ([]*document, error) {
	fdocs, err := b.DB.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	docs := make([]*document, len(fdocs))
	for i, doc := range fdocs {
		docs[i] = fromFirestore(doc)
	}
	return docs, nil
}

func (b firestoreBackend) Close() error {
	return b.Client.Close()
}

func fromFirestore(doc *fsclient.Document) *document {
	return &document{
		Ref:        doc.Ref,
		CreateTime: doc.CreateTime,
		UpdateTime: doc.UpdateTime,
		Data:       doc.Data,
	}
}

func openFirestore(ctx context.Context, project string) (backend, error) {
	client, err := firestore.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return firestoreBackend{fsclient.DB{Client: client}}, nil
}
