// Package stores abre los almacenes de datos según la configuración: la caché local
// (SQLite o Redis) y, si hay credenciales, el almacén remoto en PostgreSQL.
package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/consulta-tarifas/internal/domain/repository"
	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/cache"
	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/postgres"
	"github.com/jhoicas/consulta-tarifas/pkg/config"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

// Stores almacenes abiertos del proceso.
type Stores struct {
	Cache  repository.LocalCache
	Remote *postgres.RemoteStore // nil si la nube no está configurada

	pool *pgxpool.Pool
}

// Open abre la caché y el almacén remoto. Un remoto sin configurar no es un error: la
// aplicación funciona solo con la caché. Que Redis, la base remota o su esquema no
// respondan al arrancar solo se registra; Open falla únicamente con configuración inválida.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Stores{}

	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.StoreName, log)
		if err != nil {
			return nil, fmt.Errorf("caché redis: %w", err)
		}
		s.Cache = rc
	default:
		sc := cache.NewSQLiteCache(cfg.Cache.Dir, cfg.Cache.StoreName, log)
		log.Info().Str("path", sc.Path()).Msg("caché local SQLite")
		s.Cache = sc
	}

	if !cfg.Remote.IsConfigured() {
		log.Warn().Msg("almacén remoto no configurado: solo caché local")
		return s, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.Remote, log)
	if err != nil {
		_ = s.Cache.Close()
		return nil, fmt.Errorf("almacén remoto: %w", err)
	}
	s.pool = pool
	s.Remote = postgres.NewRemoteStore(pool, cfg.Remote.ProjectID)

	schemaCtx, cancel := context.WithTimeout(ctx, cfg.Remote.Timeout)
	defer cancel()
	if err := s.Remote.EnsureSchema(schemaCtx); err != nil {
		log.Warn().Err(err).Msg("no se pudo preparar el esquema remoto")
	}
	return s, nil
}

// RemoteStore devuelve el almacén remoto como puerto, o nil sin tipo si no hay nube.
func (s *Stores) RemoteStore() repository.RemoteStore {
	if s.Remote == nil {
		return nil
	}
	return s.Remote
}

// Close cierra la caché y el pool remoto.
func (s *Stores) Close() error {
	var errs []error
	if s.Cache != nil {
		errs = append(errs, s.Cache.Close())
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return errors.Join(errs...)
}
