package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/cache"
)

func TestSQLiteCache_GetSinDatos(t *testing.T) {
	c := cache.NewSQLiteCache(t.TempDir(), "TestDB_v1", nil)
	t.Cleanup(func() { _ = c.Close() })

	b, found, err := c.Get(context.Background(), "appData")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, b)
}

func TestSQLiteCache_PutYGet(t *testing.T) {
	c := cache.NewSQLiteCache(t.TempDir(), "TestDB_v1", nil)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "appData", []byte(`{"companyName":"A"}`)))
	require.NoError(t, c.Put(ctx, "appData", []byte(`{"companyName":"B"}`)))

	b, found, err := c.Get(ctx, "appData")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"companyName":"B"}`, string(b))
}

func TestSQLiteCache_PersisteEntreAperturas(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := cache.NewSQLiteCache(dir, "TestDB_v1", nil)
	require.NoError(t, first.Put(ctx, "appData", []byte("datos")))
	require.NoError(t, first.Close())

	second := cache.NewSQLiteCache(dir, "TestDB_v1", nil)
	t.Cleanup(func() { _ = second.Close() })
	b, found, err := second.Get(ctx, "appData")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "datos", string(b))
	assert.Equal(t, filepath.Join(dir, "TestDB_v1.db"), second.Path())
}

func TestSQLiteCache_CambioDeVersionAbandonaDatos(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	v1 := cache.NewSQLiteCache(dir, "TestDB_v1", nil)
	require.NoError(t, v1.Put(ctx, "appData", []byte("viejo")))
	require.NoError(t, v1.Close())

	v2 := cache.NewSQLiteCache(dir, "TestDB_v2", nil)
	t.Cleanup(func() { _ = v2.Close() })
	_, found, err := v2.Get(ctx, "appData")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteCache_AperturaFallida_SeReintenta(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "bloqueo")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// El directorio de la caché es un archivo: la apertura falla.
	c := cache.NewSQLiteCache(blocker, "TestDB_v1", nil)
	t.Cleanup(func() { _ = c.Close() })
	_, _, err := c.Get(context.Background(), "appData")
	require.Error(t, err)

	require.NoError(t, os.Remove(blocker))
	require.NoError(t, c.Put(context.Background(), "appData", []byte("ok")))
	b, found, err := c.Get(context.Background(), "appData")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ok", string(b))
}

func TestSQLiteCache_CloseSinAbrir(t *testing.T) {
	c := cache.NewSQLiteCache(t.TempDir(), "TestDB_v1", nil)
	assert.NoError(t, c.Close())
}
