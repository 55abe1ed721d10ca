package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='documents'").Scan(&name)
	assert.NoError(t, err)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_documents_collection'").Scan(&name)
	assert.NoError(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	s, _ := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_ResumesSeq(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, ref("users/1"), value.MapOf(), SetOptions{}))
	require.NoError(t, s.Set(ctx, ref("users/2"), value.MapOf(), SetOptions{}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Set(ctx, ref("users/3"), value.MapOf(), SetOptions{}))

	snap, err := s.Get(ctx, ref("users/3"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Seq)
}

func TestStoreIsHandle(t *testing.T) {
	s, _ := createTestStore(t)

	r, err := s.DocumentReference("/users/7/")
	require.NoError(t, err)
	assert.Equal(t, ref("users/7"), r)

	_, err = s.DocumentReference("users")
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	v, err := tagging.Resolve(value.Pair{Tag: value.TagReference, Payload: value.String("users/7")}, s)
	require.NoError(t, err)
	assert.Equal(t, ref("users/7"), v)

	_, err = tagging.Resolve(value.Pair{Tag: value.TagReference, Payload: value.String("users/7/x")}, s)
	assert.True(t, errors.Is(err, tagging.ErrInvalidReferencePath))
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}
