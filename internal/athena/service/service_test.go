package service

import (
	"path/filepath"
	"testing"

	"github.com/athena-forum/athena/internal/athena/store"
	"github.com/athena-forum/athena/internal/athena/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh migrated sqlite store backed by a temp file.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "athena_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}
