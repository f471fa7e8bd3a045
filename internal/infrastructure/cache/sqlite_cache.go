package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jhoicas/consulta-tarifas/internal/domain/repository"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

// Partition tabla única donde se guardan las entradas de la caché.
const Partition = "appDataStore"

const schemaVersion = 1

// Verificar en tiempo de compilación que SQLiteCache implementa LocalCache.
var _ repository.LocalCache = (*SQLiteCache)(nil)

// SQLiteCache caché local duradera en un archivo SQLite por almacén. La conexión se
// abre en el primer uso y se comparte; si la apertura falla se reintenta en la
// siguiente llamada.
type SQLiteCache struct {
	path string
	log  *logger.Logger

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteCache prepara la caché en <dir>/<storeName>.db sin tocar el disco.
func NewSQLiteCache(dir, storeName string, log *logger.Logger) *SQLiteCache {
	if log == nil {
		log = logger.Nop()
	}
	return &SQLiteCache{
		path: filepath.Join(dir, storeName+".db"),
		log:  log.Named("cache.sqlite"),
	}
}

// Path ruta del archivo de la base de datos.
func (c *SQLiteCache) Path() string { return c.path }

func (c *SQLiteCache) conn(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: crear directorio: %w", err)
	}
	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return nil, fmt.Errorf("cache: abrir %s: %w", c.path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cache: pragma %q: %w", p, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: migración: %w", err)
	}

	c.db = db
	c.log.Debug().Str("path", c.path).Msg("caché local abierta")
	return db, nil
}

// migrate crea la partición cuando la versión del esquema es menor que la actual.
func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("leer user_version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+Partition+` (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("crear %s: %w", Partition, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("fijar user_version: %w", err)
	}
	return tx.Commit()
}

// Get lee la entrada key. found es false si no existe.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, false, err
	}
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, false, fmt.Errorf("cache: iniciar lectura: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var value []byte
	err = tx.QueryRowContext(ctx, "SELECT value FROM "+Partition+" WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: leer %s: %w", key, err)
	}
	return value, true, tx.Commit()
}

// Put escribe (o reemplaza) la entrada key.
func (c *SQLiteCache) Put(ctx context.Context, key string, value []byte) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: iniciar escritura: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO `+Partition+` (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("cache: escribir %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: confirmar %s: %w", key, err)
	}
	return nil
}

// Close cierra la conexión si llegó a abrirse.
func (c *SQLiteCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
