package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/config"
	"github.com/acrylic/tracker/internal/ports"
)

// testStoreContract exercises the behavior every ports.Store backend shares
func testStoreContract(t *testing.T, store ports.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrKeyNotFound)

	keys := []string{"courses", "acrylic:hidden", "weird/key with spaces"}
	for i, k := range keys {
		require.NoError(t, store.Set(ctx, k, []byte{byte('a' + i)}))
	}

	for i, k := range keys {
		got, err := store.Get(ctx, k)
		require.NoError(t, err, k)
		assert.Equal(t, []byte{byte('a' + i)}, got)
	}

	require.NoError(t, store.Set(ctx, "courses", []byte("replaced")))
	got, err := store.Get(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))

	listed, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"acrylic:hidden", "courses", "weird/key with spaces"}, listed)

	listed, err = store.List(ctx, "acrylic:")
	require.NoError(t, err)
	assert.Equal(t, []string{"acrylic:hidden"}, listed)

	require.NoError(t, store.Delete(ctx, "courses"))
	require.NoError(t, store.Delete(ctx, "courses"), "deleting a missing key is not an error")
	_, err = store.Get(ctx, "courses")
	assert.ErrorIs(t, err, entities.ErrKeyNotFound)
}

func TestFileStore(t *testing.T) {
	disk, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	stores := map[string]ports.Store{
		"memory": NewMemoryStore(),
		"disk":   disk,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			testStoreContract(t, store)
			assert.NoError(t, store.Close())
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "token", []byte("sealed")))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "sealed", string(got))
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Set(ctx, "k", nil), context.Canceled)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNamespacedStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	app := Namespace(inner, "group.acrylic")
	other := Namespace(inner, "other")

	require.NoError(t, app.Set(ctx, "courses", []byte("mine")))
	require.NoError(t, other.Set(ctx, "courses", []byte("theirs")))

	raw, err := inner.Get(ctx, "group.acrylic:courses")
	require.NoError(t, err)
	assert.Equal(t, "mine", string(raw))

	got, err := app.Get(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, "mine", string(got))

	keys, err := app.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"courses"}, keys)

	require.NoError(t, app.Delete(ctx, "courses"))
	_, err = app.Get(ctx, "courses")
	assert.ErrorIs(t, err, entities.ErrKeyNotFound)
	_, err = other.Get(ctx, "courses")
	assert.NoError(t, err)
}

func TestNamespacedStore_EmptyNamespace(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := Namespace(inner, "")

	require.NoError(t, store.Set(ctx, "courses", []byte("x")))
	_, err := inner.Get(ctx, "courses")
	assert.NoError(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		storage config.StorageConfig
		wantErr bool
	}{
		{name: "memory", storage: config.StorageConfig{Driver: "memory", Namespace: "acrylic"}},
		{name: "file", storage: config.StorageConfig{Driver: "file", Dir: t.TempDir(), Namespace: "acrylic"}},
		{name: "unknown", storage: config.StorageConfig{Driver: "sqlite"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, &config.Config{Storage: tt.storage})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })

			require.NoError(t, store.Set(ctx, ports.KeyCourses, []byte("[]")))
			got, err := store.Get(ctx, ports.KeyCourses)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got))
		})
	}
}
