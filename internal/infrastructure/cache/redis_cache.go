package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/consulta-tarifas/internal/domain/repository"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

// Verificar en tiempo de compilación que RedisCache implementa LocalCache.
var _ repository.LocalCache = (*RedisCache)(nil)

// RedisCache caché local sobre Redis. Las claves son <almacén>:<partición>:<clave>
// y no expiran.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache construye el cliente para url. El cliente conecta de forma perezosa: si
// el ping inicial falla solo se registra un aviso y cada operación reintenta la conexión.
// Solo una URL vacía o mal formada es un error.
func NewRedisCache(ctx context.Context, url, storeName string, log *logger.Logger) (*RedisCache, error) {
	if url == "" {
		return nil, errors.New("redis: REDIS_URL no configurado")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil && log != nil {
		log.Warn().Err(err).Str("addr", opt.Addr).Msg("redis no disponible al arrancar; se reintentará en cada operación")
	}
	return NewRedisCacheFromClient(c, storeName), nil
}

// NewRedisCacheFromClient envuelve un cliente ya construido.
func NewRedisCacheFromClient(client *redis.Client, storeName string) *RedisCache {
	return &RedisCache{client: client, prefix: storeName + ":" + Partition + ":"}
}

// Key clave real en Redis para key.
func (r *RedisCache) Key(key string) string { return r.prefix + key }

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return b, true, nil
}

func (r *RedisCache) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
