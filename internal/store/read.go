package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/docbridge/internal/docpath"
	"github.com/roach88/docbridge/internal/value"
)

// Snapshot is a document as read from the store.
type Snapshot struct {
	Ref        value.Reference
	ID         string
	Data       *value.Map
	Seq        int64
	CreateTime value.Timestamp
	UpdateTime value.Timestamp
}

// Field returns the value at a dotted field path.
func (snap *Snapshot) Field(path string) (value.Value, bool) {
	var cur value.Value = snap.Data
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(*value.Map)
		if !ok {
			return nil, false
		}
		if cur, ok = m.Get(seg); !ok {
			return nil, false
		}
	}
	return cur, true
}

type documentRow struct {
	path       string
	id         string
	data       string
	seq        int64
	createTime int64
	updateTime int64
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadRow returns ErrNotFound if there is no document at p.
func (s *Store) loadRow(ctx context.Context, q rowQuerier, p docpath.Path) (*documentRow, error) {
	var r documentRow
	err := q.QueryRowContext(ctx, `
		SELECT path, id, data, seq, create_time, update_time
		FROM documents
		WHERE path = ?
	`, p.String()).Scan(&r.path, &r.id, &r.data, &r.seq, &r.createTime, &r.updateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return &r, nil
}

func (s *Store) snapshot(r *documentRow) (*Snapshot, error) {
	data, err := s.unmarshalFields(r.data)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Ref:        value.Reference{Path: r.path},
		ID:         r.id,
		Data:       data,
		Seq:        r.seq,
		CreateTime: value.TimestampOf(time.Unix(0, r.createTime)),
		UpdateTime: value.TimestampOf(time.Unix(0, r.updateTime)),
	}, nil
}

// Get reads the document at ref. Returns ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, ref value.Reference) (*Snapshot, error) {
	p, err := documentPath(ref)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	r, err := s.loadRow(ctx, s.db, p)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", p, err)
	}
	snap, err := s.snapshot(r)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", p, err)
	}
	s.logger.Debug("document read", "path", p.String(), "seq", snap.Seq)
	return snap, nil
}

// List returns every document directly in collection, ordered by ID
// (COLLATE BINARY).
//
// Returns an empty slice (not nil) if the collection has no documents.
func (s *Store) List(ctx context.Context, collection string) ([]*Snapshot, error) {
	cp, err := collectionPath(collection)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, id, data, seq, create_time, update_time
		FROM documents
		WHERE collection = ?
		ORDER BY id COLLATE BINARY ASC
	`, cp.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", cp, err)
	}
	defer rows.Close()

	// Scan everything before resolving: the single connection is held by
	// rows until it is closed.
	var raw []documentRow
	for rows.Next() {
		var r documentRow
		if err := rows.Scan(&r.path, &r.id, &r.data, &r.seq, &r.createTime, &r.updateTime); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	snaps := make([]*Snapshot, 0, len(raw))
	for i := range raw {
		snap, err := s.snapshot(&raw[i])
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", cp, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
