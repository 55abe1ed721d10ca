package fsclient

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/roach88/docbridge/internal/value"
)

// Errors returned by DB. Use errors.Is to test for them.
var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Document is a document read from Firestore.
type Document struct {
	Ref        value.Reference
	Data       *value.Map
	CreateTime value.Timestamp
	UpdateTime value.Timestamp
}

// DB reads and writes Firestore documents as value maps.
type DB struct {
	Client *firestore.Client
}

// DocumentReference makes DB a tagging.Handle.
func (db DB) DocumentReference(path string) (value.Reference, error) {
	return Handle{Client: db.Client}.DocumentReference(path)
}

func (db DB) doc(ref value.Reference) (*firestore.DocumentRef, error) {
	d := db.Client.Doc(ref.Path)
	if d == nil {
		return nil, fmt.Errorf("%w: invalid document path %q", ErrInvalidArgument, ref.Path)
	}
	return d, nil
}

// rpcError maps a NotFound status onto ErrNotFound.
func rpcError(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// Set writes fields to ref, merging all given fields when merge is set.
func (db DB) Set(ctx context.Context, ref value.Reference, fields *value.Map, merge bool) error {
	d, err := db.doc(ref)
	if err != nil {
		return err
	}
	data, err := NativeMap(fields, db.Client)
	if err != nil {
		return fmt.Errorf("set %s: %w: %w", ref.Path, ErrInvalidArgument, err)
	}
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if _, err := d.Set(ctx, data, opts...); err != nil {
		return fmt.Errorf("set %s: %w", ref.Path, rpcError(err))
	}
	return nil
}

// Update changes fields addressed by dotted paths.
func (db DB) Update(ctx context.Context, ref value.Reference, fields *value.Map) error {
	d, err := db.doc(ref)
	if err != nil {
		return err
	}
	updates := make([]firestore.Update, 0, fields.Len())
	for _, f := range fields.Fields() {
		nv, err := ToNative(f.Value, db.Client)
		if err != nil {
			return fmt.Errorf("update %s: %s: %w: %w", ref.Path, f.Key, ErrInvalidArgument, err)
		}
		updates = append(updates, firestore.Update{Path: f.Key, Value: nv})
	}
	if _, err := d.Update(ctx, updates); err != nil {
		return fmt.Errorf("update %s: %w", ref.Path, rpcError(err))
	}
	return nil
}

// Get reads the document at ref.
func (db DB) Get(ctx context.Context, ref value.Reference) (*Document, error) {
	d, err := db.doc(ref)
	if err != nil {
		return nil, err
	}
	snap, err := d.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", ref.Path, rpcError(err))
	}
	return document(snap)
}

// Add creates a document with a generated ID in collection.
func (db DB) Add(ctx context.Context, collection string, fields *value.Map) (value.Reference, error) {
	c := db.Client.Collection(collection)
	if c == nil {
		return value.Reference{}, fmt.Errorf("%w: invalid collection path %q", ErrInvalidArgument, collection)
	}
	data, err := NativeMap(fields, db.Client)
	if err != nil {
		return value.Reference{}, fmt.Errorf("add %s: %w: %w", collection, ErrInvalidArgument, err)
	}
	d, _, err := c.Add(ctx, data)
	if err != nil {
		return value.Reference{}, fmt.Errorf("add %s: %w", collection, rpcError(err))
	}
	return value.Reference{Path: RelativePath(d)}, nil
}

// List returns every document directly in collection, ordered by ID.
func (db DB) List(ctx context.Context, collection string) ([]*Document, error) {
	c := db.Client.Collection(collection)
	if c == nil {
		return nil, fmt.Errorf("%w: invalid collection path %q", ErrInvalidArgument, collection)
	}
	snaps, err := c.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, rpcError(err))
	}
	docs := make([]*Document, 0, len(snaps))
	for _, snap := range snaps {
		doc, err := document(snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref.Path < docs[j].Ref.Path })
	return docs, nil
}

// Delete removes the document at ref.
func (db DB) Delete(ctx context.Context, ref value.Reference) error {
	d, err := db.doc(ref)
	if err != nil {
		return err
	}
	if _, err := d.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", ref.Path, rpcError(err))
	}
	return nil
}

func document(snap *firestore.DocumentSnapshot) (*Document, error) {
	data, err := FromNativeMap(snap.Data())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", snap.Ref.Path, err)
	}
	return &Document{
		Ref:        value.Reference{Path: RelativePath(snap.Ref)},
		Data:       data,
		CreateTime: value.TimestampOf(snap.CreateTime),
		UpdateTime: value.TimestampOf(snap.UpdateTime),
	}, nil
}
