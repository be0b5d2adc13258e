package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvforge/llrbkv/pkg/metrics"
)

func TestConnect_GetSetDeleteCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.db")

	db, err := Connect(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Set([]byte("k"), []byte("v1")))
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, db.Commit())

	require.NoError(t, db.Delete([]byte("k")))
	require.NoError(t, db.Commit())

	_, err = db.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClose_RejectsFurtherOperations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.db")

	db, err := Connect(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)

	err = db.Set([]byte("k"), []byte("v"))
	assert.ErrorIs(t, err, ErrClosed)

	err = db.Delete([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)

	err = db.Commit()
	assert.ErrorIs(t, err, ErrClosed)

	_, err = db.RootKey()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClose_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idempotent.db")

	db, err := Connect(path)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
}

func TestRootKey_EmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	db, err := Connect(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.RootKey()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStats_ReflectsFileGrowthAndDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	db, err := Connect(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	before := db.Stats()

	require.NoError(t, db.Set([]byte("a"), []byte("1")))
	require.NoError(t, db.Set([]byte("b"), []byte("2")))
	require.NoError(t, db.Commit())

	after := db.Stats()
	assert.Greater(t, after.FileSizeBytes, before.FileSizeBytes)
	assert.GreaterOrEqual(t, after.TreeDepth, 1)
}

func TestStats_ZeroValueAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats_closed.db")

	db, err := Connect(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	assert.Equal(t, Stats{}, db.Stats())
}

func TestConnect_WithRegisterHealthMarksComponentHealthy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health.db")

	db, err := Connect(path, WithRegisterHealth("test-db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, "test-db", db.healthComponent)
	assert.Equal(t, "healthy", metrics.GetHealth().Components["test-db"])
}

func TestReconnect_SeesPreviouslyCommittedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconnect.db")

	db1, err := Connect(path)
	require.NoError(t, err)
	require.NoError(t, db1.Set([]byte("persisted"), []byte("yes")))
	require.NoError(t, db1.Commit())
	require.NoError(t, db1.Close())

	db2, err := Connect(path)
	require.NoError(t, err)
	defer func() { _ = db2.Close() }()

	v, err := db2.Get([]byte("persisted"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), v)
}
