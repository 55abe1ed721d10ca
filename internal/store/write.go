package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/docbridge/internal/docpath"
	"github.com/roach88/docbridge/internal/value"
)

// SetOptions controls Set.
type SetOptions struct {
	// Merge merges fields into an existing document instead of replacing
	// it. Nested maps merge field by field and Delete values are allowed.
	Merge bool
}

// Set writes fields to the document at ref, creating it if needed.
//
// Without Merge the document is replaced and field transforms are applied
// against an empty document. Delete is only valid with Merge.
func (s *Store) Set(ctx context.Context, ref value.Reference, fields *value.Map, opts SetOptions) error {
	p, err := documentPath(ref)
	if err != nil {
		return fmt.Errorf("set: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("set %s: %w", p, invalidf("nil field map"))
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.loadRow(ctx, tx, p)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		var existing value.Value
		if prev != nil && opts.Merge {
			if existing, err = s.unmarshalFields(prev.data); err != nil {
				return err
			}
		}

		seq, w := s.stamp()
		doc, _, err := w.apply("", existing, fields, opts.Merge, opts.Merge)
		if err != nil {
			return err
		}
		return s.put(ctx, tx, p, doc.(*value.Map), seq, w.now)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", p, err)
	}

	s.logger.Info("document set", "path", p.String(), "merge", opts.Merge)
	return nil
}

// Update changes fields of an existing document. Keys of fields are dotted
// field paths ("address.city"); each addressed value is replaced, missing
// intermediate maps are created. Returns ErrNotFound if the document does
// not exist.
func (s *Store) Update(ctx context.Context, ref value.Reference, fields *value.Map) error {
	p, err := documentPath(ref)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if fields.Len() == 0 {
		return fmt.Errorf("update %s: %w", p, invalidf("no fields to update"))
	}
	paths := fields.Keys()
	for _, fp := range paths {
		if _, err := splitFieldPath(fp); err != nil {
			return fmt.Errorf("update %s: %w", p, err)
		}
	}
	if err := checkFieldPaths(paths); err != nil {
		return fmt.Errorf("update %s: %w", p, err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.loadRow(ctx, tx, p)
		if err != nil {
			return err
		}
		doc, err := s.unmarshalFields(prev.data)
		if err != nil {
			return err
		}

		seq, w := s.stamp()
		for _, f := range fields.Fields() {
			segs, _ := splitFieldPath(f.Key)
			if err := w.setPath(doc, segs, f.Value); err != nil {
				return err
			}
		}
		return s.put(ctx, tx, p, doc, seq, w.now)
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", p, err)
	}

	s.logger.Info("document updated", "path", p.String(), "fields", len(paths))
	return nil
}

// setPath writes v at the nested field segs of doc.
func (w fieldWriter) setPath(doc *value.Map, segs []string, v value.Value) error {
	_, isDelete := v.(value.Delete)
	parent := doc
	for _, seg := range segs[:len(segs)-1] {
		next, _ := parent.Get(seg)
		child, ok := next.(*value.Map)
		if !ok {
			if isDelete {
				return nil
			}
			child = value.NewMap(1)
			parent.Set(seg, child)
		}
		parent = child
	}

	leaf := segs[len(segs)-1]
	old, _ := parent.Get(leaf)
	nv, keep, err := w.apply(strings.Join(segs, "."), old, v, false, true)
	if err != nil {
		return err
	}
	if !keep {
		parent.Delete(leaf)
		return nil
	}
	parent.Set(leaf, nv)
	return nil
}

// Delete removes the document at ref. Deleting a missing document is not
// an error.
func (s *Store) Delete(ctx context.Context, ref value.Reference) error {
	p, err := documentPath(ref)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, p.String())
	if err != nil {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info("document deleted", "path", p.String(), "existed", n > 0)
	return nil
}

// Add creates a document with a generated ID in collection and returns its
// reference.
func (s *Store) Add(ctx context.Context, collection string, fields *value.Map) (value.Reference, error) {
	cp, err := collectionPath(collection)
	if err != nil {
		return value.Reference{}, fmt.Errorf("add: %w", err)
	}
	p, err := cp.Child(s.ids.NewID())
	if err != nil {
		return value.Reference{}, fmt.Errorf("add: %w: %w", ErrInvalidArgument, err)
	}
	ref := value.Reference{Path: p.String()}
	if err := s.Set(ctx, ref, fields, SetOptions{}); err != nil {
		return value.Reference{}, err
	}
	return ref, nil
}

// stamp takes the next seq and the matching write time.
func (s *Store) stamp() (int64, fieldWriter) {
	seq := s.clock.Next()
	return seq, fieldWriter{now: value.TimestampOf(s.clock.Now())}
}

// put upserts a document row. create_time is kept on update.
func (s *Store) put(ctx context.Context, tx *sql.Tx, p docpath.Path, doc *value.Map, seq int64, now value.Timestamp) error {
	data, err := marshalFields(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	nanos := now.Time().UnixNano()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (path, collection, id, data, seq, create_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			data = excluded.data,
			seq = excluded.seq,
			update_time = excluded.update_time
	`,
		p.String(),
		p.Parent().String(),
		p.ID(),
		data,
		seq,
		nanos,
		nanos,
	)
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
