package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/docbridge/internal/testutil"
	"github.com/roach88/docbridge/internal/value"
)

// createTestStore creates a store in a temp dir with a deterministic clock.
func createTestStore(t *testing.T, opts ...Option) (*Store, *testutil.DeterministicClock) {
	t.Helper()
	clock := testutil.NewDeterministicClock()
	path := filepath.Join(t.TempDir(), "test.db")
	all := append([]Option{
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	s, err := Open(path, all...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func ref(path string) value.Reference {
	return value.Reference{Path: path}
}
