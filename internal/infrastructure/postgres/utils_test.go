package postgres

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/consulta-tarifas/internal/domain"
)

func TestWrapErr_TablaInexistente_EsNoConfigurado(t *testing.T) {
	err := wrapErr("query users", &pgconn.PgError{Code: "42P01", Message: `relation "remote_documents" does not exist`})
	assert.ErrorIs(t, err, domain.ErrRemoteNotConfigured)
	assert.Contains(t, err.Error(), "query users")
}

func TestWrapErr_OtroError_SeEnvuelve(t *testing.T) {
	base := errors.New("connection refused")
	err := wrapErr("query users", base)
	assert.ErrorIs(t, err, base)
	assert.NotErrorIs(t, err, domain.ErrRemoteNotConfigured)
}

func TestSetExactNumber_ConservaDecimalesYSerializaComoNumero(t *testing.T) {
	data := map[string]any{"precio": 21.5, "pvp": "1,20"}
	precio := decimal.NullDecimal{Decimal: decimal.RequireFromString("12345678901234.5678"), Valid: true}

	setExactNumber(data, "precio", precio)
	setExactNumber(data, "pvp", decimal.NullDecimal{})

	assert.Equal(t, json.Number("12345678901234.5678"), data["precio"])
	assert.Equal(t, "1,20", data["pvp"], "sin valor numérico se deja el original")

	b, err := json.Marshal(data)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"precio": 12345678901234.5678, "pvp": "1,20"}`, string(b))
}
