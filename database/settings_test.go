package database

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	migrations, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)
	db, err := New(filepath.Join(t.TempDir(), "pemblle.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGetSetting(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetSetting(ctx, "lang", "tr"))

	got, err := db.GetSetting(ctx, "lang")
	require.NoError(t, err)
	assert.Equal(t, "tr", got)
}

func TestGetSettingMissingReturnsEmpty(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetSetting(context.Background(), "never-set")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetSettingOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetSetting(ctx, "lang", "tr"))
	require.NoError(t, db.SetSetting(ctx, "lang", "en"))

	got, err := db.GetSetting(ctx, "lang")
	require.NoError(t, err)
	assert.Equal(t, "en", got)

	// Upsert tek satır bırakır
	var count int
	require.NoError(t, db.Conn.QueryRow(
		"SELECT COUNT(*) FROM settings WHERE key = 'lang'",
	).Scan(&count))
	assert.Equal(t, 1, count)
}
