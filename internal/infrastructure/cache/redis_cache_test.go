package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/cache"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

func TestRedisCache_FormatoDeClave(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	c := cache.NewRedisCacheFromClient(client, "ConsultaTarifasDB_v11")
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, "ConsultaTarifasDB_v11:appDataStore:appData", c.Key("appData"))
}

func TestNewRedisCache_SinURL(t *testing.T) {
	_, err := cache.NewRedisCache(context.Background(), "", "X", nil)
	assert.Error(t, err)
}

func TestNewRedisCache_Inaccesible_NoFallaAlConstruir(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := cache.NewRedisCache(ctx, "redis://127.0.0.1:1/0", "X", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, found, err := c.Get(ctx, "appData")
	assert.Error(t, err, "el fallo aparece en la operación, no al arrancar")
	assert.False(t, found)
}

// Requiere un Redis real: REDIS_URL=redis://localhost:6379/15 go test ./...
func TestRedisCache_PutYGet(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL no configurado")
	}
	ctx := context.Background()
	c, err := cache.NewRedisCache(ctx, url, "TestDB_"+t.Name(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, found, err := c.Get(ctx, "inexistente")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Put(ctx, "appData", []byte(`{"a":1}`)))
	b, found, err := c.Get(ctx, "appData")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"a":1}`, string(b))
}
