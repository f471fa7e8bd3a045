package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/consulta-tarifas/internal/domain"
	"github.com/jhoicas/consulta-tarifas/internal/domain/repository"
)

var _ repository.RemoteStore = (*RemoteStore)(nil)

// Esquema del almacén remoto: documentos JSONB agrupados por proyecto y colección,
// más el documento principal appData/main con su marca de tiempo del servidor.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS remote_documents (
		project_id TEXT  NOT NULL,
		collection TEXT  NOT NULL,
		doc_id     TEXT  NOT NULL,
		data       JSONB NOT NULL DEFAULT '{}'::jsonb,
		PRIMARY KEY (project_id, collection, doc_id)
	)`,
	`CREATE TABLE IF NOT EXISTS remote_app_data (
		project_id       TEXT        NOT NULL,
		doc_id           TEXT        NOT NULL,
		data             JSONB       NOT NULL,
		server_timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (project_id, doc_id)
	)`,
}

// RemoteStore implementación del puerto RemoteStore sobre PostgreSQL.
type RemoteStore struct {
	pool      *pgxpool.Pool
	tx        *TxRunner
	projectID string
}

// NewRemoteStore construye el adaptador para el proyecto dado.
func NewRemoteStore(pool *pgxpool.Pool, projectID string) *RemoteStore {
	return &RemoteStore{pool: pool, tx: NewTxRunner(pool), projectID: projectID}
}

// EnsureSchema crea las tablas si no existen, en una sola transacción.
func (s *RemoteStore) EnsureSchema(ctx context.Context) error {
	return s.tx.Run(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("crear esquema remoto: %w", err)
			}
		}
		return nil
	})
}

// FetchCollection devuelve todos los documentos de la colección, ordenados por id.
func (s *RemoteStore) FetchCollection(ctx context.Context, collection string) ([]repository.RemoteDocument, error) {
	if collection == repository.CollectionTarifas {
		return s.fetchTarifas(ctx)
	}
	query := `
		SELECT doc_id, data
		FROM remote_documents
		WHERE project_id = $1 AND collection = $2
		ORDER BY doc_id`
	rows, err := s.pool.Query(ctx, query, s.projectID, collection)
	if err != nil {
		return nil, wrapErr("query "+collection, err)
	}
	defer rows.Close()

	docs := make([]repository.RemoteDocument, 0)
	for rows.Next() {
		var d repository.RemoteDocument
		if err := rows.Scan(&d.ID, &d.Data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("rows "+collection, err)
	}
	return docs, nil
}

// fetchTarifas lee las tarifas proyectando precio y pvp numéricos como NUMERIC: el JSON
// decodificado pasaría por float64 y perdería precisión. Los precios en texto
// ("21,50") se dejan tal cual.
func (s *RemoteStore) fetchTarifas(ctx context.Context) ([]repository.RemoteDocument, error) {
	query := `
		SELECT doc_id, data,
			CASE WHEN jsonb_typeof(data->'precio') = 'number' THEN (data->>'precio')::numeric END,
			CASE WHEN jsonb_typeof(data->'pvp') = 'number' THEN (data->>'pvp')::numeric END
		FROM remote_documents
		WHERE project_id = $1 AND collection = $2
		ORDER BY doc_id`
	rows, err := s.pool.Query(ctx, query, s.projectID, repository.CollectionTarifas)
	if err != nil {
		return nil, wrapErr("query "+repository.CollectionTarifas, err)
	}
	defer rows.Close()

	docs := make([]repository.RemoteDocument, 0)
	for rows.Next() {
		var (
			d           repository.RemoteDocument
			precio, pvp decimal.NullDecimal
		)
		if err := rows.Scan(&d.ID, &d.Data, &precio, &pvp); err != nil {
			return nil, fmt.Errorf("scan %s: %w", repository.CollectionTarifas, err)
		}
		setExactNumber(d.Data, "precio", precio)
		setExactNumber(d.Data, "pvp", pvp)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("rows "+repository.CollectionTarifas, err)
	}
	return docs, nil
}

// setExactNumber sustituye data[key] por el valor exacto como json.Number, que se
// serializa como número y conserva todos los decimales.
func setExactNumber(data map[string]any, key string, v decimal.NullDecimal) {
	if !v.Valid || data == nil {
		return
	}
	data[key] = json.Number(v.Decimal.String())
}

// FetchMain lee el documento principal. exists es false si no se ha guardado nunca.
func (s *RemoteStore) FetchMain(ctx context.Context) (map[string]any, bool, error) {
	query := `SELECT data FROM remote_app_data WHERE project_id = $1 AND doc_id = $2`
	var data map[string]any
	err := s.pool.QueryRow(ctx, query, s.projectID, repository.MainDocumentID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapErr("query "+repository.MainCollection, err)
	}
	return data, true, nil
}

// SaveMain reemplaza el documento principal y actualiza su marca de tiempo del servidor.
func (s *RemoteStore) SaveMain(ctx context.Context, doc map[string]any) error {
	query := `
		INSERT INTO remote_app_data (project_id, doc_id, data, server_timestamp)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (project_id, doc_id)
		DO UPDATE SET data = EXCLUDED.data, server_timestamp = EXCLUDED.server_timestamp`
	if _, err := s.pool.Exec(ctx, query, s.projectID, repository.MainDocumentID, doc); err != nil {
		return wrapErr("upsert "+repository.MainCollection, err)
	}
	return nil
}

// PutDocuments reemplaza el contenido de una colección con docs (usado por la CLI de
// mantenimiento para publicar colecciones en la nube).
func (s *RemoteStore) PutDocuments(ctx context.Context, collection string, docs []repository.RemoteDocument) error {
	return s.tx.Run(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM remote_documents WHERE project_id = $1 AND collection = $2`,
			s.projectID, collection); err != nil {
			return wrapErr("delete "+collection, err)
		}
		batch := &pgx.Batch{}
		for _, d := range docs {
			batch.Queue(
				`INSERT INTO remote_documents (project_id, collection, doc_id, data) VALUES ($1, $2, $3, $4)`,
				s.projectID, collection, d.ID, d.Data)
		}
		br := tx.SendBatch(ctx, batch)
		for range docs {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return wrapErr("insert "+collection, err)
			}
		}
		return br.Close()
	})
}

func wrapErr(op string, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRemoteNotConfigured, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
