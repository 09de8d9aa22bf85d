package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/pluxee-mcp/internal/adapter/driven/filestore"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

const profileDir = "/home/user/.pluxee-profile"

func TestStore_SaveAndLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := filestore.New(fsys, profileDir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, model.KeyToken, "tok-123"))

	val, err := store.Load(ctx, model.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", val)

	raw, err := afero.ReadFile(fsys, filepath.Join(profileDir, "token"))
	require.NoError(t, err)
	assert.Equal(t, "tok-123", string(raw))
}

func TestStore_LoadTrimsWhitespace(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(profileDir, "area_hash"), []byte("  hash-1\n"), 0o600))

	val, err := filestore.New(fsys, profileDir).Load(context.Background(), model.KeyAreaHash)

	require.NoError(t, err)
	assert.Equal(t, "hash-1", val)
}

func TestStore_LoadMissing(t *testing.T) {
	val, err := filestore.New(afero.NewMemMapFs(), profileDir).Load(context.Background(), model.KeyToken)

	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestStore_SaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := filestore.New(fsys, profileDir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, model.KeyToken, "first"))
	require.NoError(t, store.Save(ctx, model.KeyToken, "second"))

	val, err := store.Load(ctx, model.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "second", val)

	entries, err := afero.ReadDir(fsys, profileDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token", entries[0].Name())
}

func TestStore_Delete(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := filestore.New(fsys, profileDir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, model.KeyAreaHash, "h"))
	require.NoError(t, store.Delete(ctx, model.KeyAreaHash))
	require.NoError(t, store.Delete(ctx, model.KeyAreaHash))

	exists, err := afero.Exists(fsys, filepath.Join(profileDir, "area_hash"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_ReadOnlyFilesystemFailsSave(t *testing.T) {
	store := filestore.New(afero.NewReadOnlyFs(afero.NewMemMapFs()), profileDir)

	err := store.Save(context.Background(), model.KeyToken, "tok")
	assert.Error(t, err)
}

func TestStore_OnDiskPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	store := filestore.New(nil, dir)

	require.NoError(t, store.Save(context.Background(), model.KeyToken, "tok"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, dir, store.Dir())
}
