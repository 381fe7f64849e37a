package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())
}

func TestStorageItems(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.GetStorageItem("browser-a", "isLoggedIn")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.SetStorageItem("browser-a", "isLoggedIn", "true"))
	value, ok, err := db.GetStorageItem("browser-a", "isLoggedIn")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	// Browsers are isolated from each other.
	_, ok, err = db.GetStorageItem("browser-b", "isLoggedIn")
	require.NoError(t, err)
	assert.False(t, ok)

	// Overwrite.
	require.NoError(t, db.SetStorageItem("browser-a", "isLoggedIn", "false"))
	value, _, _ = db.GetStorageItem("browser-a", "isLoggedIn")
	assert.Equal(t, "false", value)

	// Remove is idempotent.
	require.NoError(t, db.RemoveStorageItem("browser-a", "isLoggedIn"))
	require.NoError(t, db.RemoveStorageItem("browser-a", "isLoggedIn"))
	_, ok, err = db.GetStorageItem("browser-a", "isLoggedIn")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRuntimeEvents(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		_, err := db.CreateRuntimeEvent("ScoreChanged", fmt.Sprintf("[%d]", i))
		require.NoError(t, err)
	}
	_, err := db.CreateRuntimeEvent("GameOver", "")
	require.NoError(t, err)

	all, err := db.ListRuntimeEvents("", 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "GameOver", all[0].Name)
	assert.Equal(t, "", all[0].Payload)

	scores, err := db.ListRuntimeEvents("ScoreChanged", 2)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "[4]", scores[0].Payload)
	assert.Equal(t, "[3]", scores[1].Payload)

	deleted, err := db.PruneRuntimeEvents(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	remaining, err := db.ListRuntimeEvents("", 10)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	assert.Equal(t, "GameOver", remaining[0].Name)
	assert.Equal(t, "[3]", remaining[2].Payload)
}
