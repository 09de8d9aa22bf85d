package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
)

func TestRecordRepo_SaveAndLoad(t *testing.T) {
	repo := NewRecordRepo(setupTestDB(t), testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.KeyToken, "tok-שלום-1"))

	val, err := repo.Load(ctx, model.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-שלום-1", val)
}

func TestRecordRepo_LoadMissing(t *testing.T) {
	repo := NewRecordRepo(setupTestDB(t), testKey())

	val, err := repo.Load(context.Background(), model.KeyAreaHash)
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestRecordRepo_SaveOverwrites(t *testing.T) {
	repo := NewRecordRepo(setupTestDB(t), testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.KeyAreaHash, "old"))
	require.NoError(t, repo.Save(ctx, model.KeyAreaHash, "new"))

	val, err := repo.Load(ctx, model.KeyAreaHash)
	require.NoError(t, err)
	assert.Equal(t, "new", val)
}

func TestRecordRepo_ValuesAreEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.KeyToken, "plain-token"))

	var stored string
	err := db.Reader.QueryRowContext(ctx, `SELECT value FROM session_records WHERE key = ?`, "token").Scan(&stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, "plain-token")
}

func TestRecordRepo_WrongKeyFailsToDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewRecordRepo(db, testKey()).Save(ctx, model.KeyToken, "secret"))

	other := make([]byte, 32)
	_, err := NewRecordRepo(db, other).Load(ctx, model.KeyToken)
	assert.Error(t, err)
}

func TestRecordRepo_NilKey(t *testing.T) {
	repo := NewRecordRepo(setupTestDB(t), nil)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Save(ctx, model.KeyToken, "x"), driven.ErrEncryptionKeyNotSet)
	_, err := repo.Load(ctx, model.KeyToken)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestRecordRepo_Delete(t *testing.T) {
	repo := NewRecordRepo(setupTestDB(t), testKey())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.KeyToken, "tok"))
	require.NoError(t, repo.Delete(ctx, model.KeyToken))
	require.NoError(t, repo.Delete(ctx, model.KeyToken), "deleting a missing record should not error")

	val, err := repo.Load(ctx, model.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestNewDB_OnDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db.Writer))
	require.NoError(t, RunMigrations(db.Writer), "migrations must be idempotent")
	require.NoError(t, NewRecordRepo(db, testKey()).Save(ctx, model.KeyToken, "persisted"))
	require.NoError(t, db.Close())

	reopened, err := NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	assert.Equal(t, path, reopened.Path())

	val, err := NewRecordRepo(reopened, testKey()).Load(ctx, model.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "persisted", val)
}
