package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/consulta-tarifas/internal/application/auth"
	"github.com/jhoicas/consulta-tarifas/internal/application/chat"
	"github.com/jhoicas/consulta-tarifas/internal/application/datasync"
	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
	"github.com/jhoicas/consulta-tarifas/internal/application/usecase"
	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/consulta-tarifas/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *memCache) Put(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = append([]byte(nil), value...)
	return nil
}

func (c *memCache) Close() error { return nil }

type echoSession struct{}

func (echoSession) Send(_ context.Context, text string) (string, error) {
	return "eco: " + text, nil
}

type echoProvider struct{}

func (echoProvider) NewSession(context.Context, ports.SessionConfig) (ports.ChatSession, error) {
	return echoSession{}, nil
}

// newTestServer arma la API completa sobre el dataset de demostración (sin nube).
func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	ds := datasync.New(&memCache{items: map[string][]byte{}}, nil, nil)
	t.Cleanup(func() { _ = ds.Close(context.Background()) })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(ds, auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		Sync:      ds,
		TarifaUC:  usecase.NewTarifaUseCase(ds, pdf.NewMarotoTarifaPDF()),
		Chat:      chat.NewManager(echoProvider{}, chat.Config{}, nil),
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func login(t *testing.T, app *fiber.App, nombre, clave string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Nombre: nombre, Clave: clave})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas(t *testing.T) {
	app := newTestServer(t)
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Nombre: "ADMIN", Clave: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LoginResponse
	decode(t, resp, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "1", out.User.ID)
	assert.Equal(t, "admin", out.User.Rol)
	assert.True(t, out.User.VerPVP)
}

func TestLogin_ClaveIncorrecta_Retorna401(t *testing.T) {
	app := newTestServer(t)
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Nombre: "admin", Clave: "mal"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_CamposVacios_Retorna400(t *testing.T) {
	app := newTestServer(t)
	resp := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRutasProtegidas_SinToken_Retorna401(t *testing.T) {
	app := newTestServer(t)
	for _, path := range []string{"/api/data", "/api/tarifas", "/api/sync/status"} {
		resp := call(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos
// ──────────────────────────────────────────────────────────────────────────────

func TestGetData_NoAdmin_SinClaves(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "Carnicero Demo", "0000")

	resp := call(t, app, http.MethodGet, "/api/data", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Users       []map[string]any `json:"users"`
		CompanyName string           `json:"companyName"`
	}
	decode(t, resp, &out)
	require.Len(t, out.Users, 3)
	for _, u := range out.Users {
		assert.NotContains(t, u, "clave")
	}
	assert.Contains(t, out.CompanyName, "DEMO")
}

func TestGetData_Admin_ConClaves(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodGet, "/api/data", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Users []map[string]any `json:"users"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Users)
	assert.Equal(t, "admin", out.Users[0]["clave"])
}

func TestSaveData_NoAdmin_Retorna403(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "Supervisor Zona", "1234")

	resp := call(t, app, http.MethodPut, "/api/data", tok, map[string]any{"companyName": "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSaveData_Admin_MezclaYPersiste(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodPut, "/api/data", tok, map[string]any{"companyName": "Carnes Nuevas"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var saved dto.SaveDataResponse
	decode(t, resp, &saved)
	assert.Equal(t, "skipped", saved.Remote, "sin nube configurada no hay subida")
	assert.NotEmpty(t, saved.LastUpdated)

	resp = call(t, app, http.MethodGet, "/api/data", tok, nil)
	var out struct {
		CompanyName string           `json:"companyName"`
		Users       []map[string]any `json:"users"`
		LastUpdated string           `json:"lastUpdated"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "Carnes Nuevas", out.CompanyName)
	assert.Len(t, out.Users, 3, "los campos ausentes del parche se conservan")
	assert.Equal(t, saved.LastUpdated, out.LastUpdated)
}

func TestSaveData_CuerpoNoEsObjeto_Retorna400(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	for _, body := range []string{"[1,2]", "no-json", "null"} {
		resp := call(t, app, http.MethodPut, "/api/data", tok, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestRestore_SinUsuarios_Retorna400(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodPost, "/api/data/restore", tok, map[string]any{"companyName": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRestore_ReemplazaDataset(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	backup := map[string]any{
		"users":       []any{map[string]any{"id": "9", "nombre": "jefe", "clave": "x", "rol": "admin", "verPVP": true}},
		"companyName": "Restaurada",
	}
	resp := call(t, app, http.MethodPost, "/api/data/restore", tok, backup)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tok2 := login(t, app, "jefe", "x")
	resp = call(t, app, http.MethodGet, "/api/data", tok2, nil)
	var out struct {
		CompanyName string           `json:"companyName"`
		Users       []map[string]any `json:"users"`
		Tarifas     []any            `json:"tarifas"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "Restaurada", out.CompanyName)
	assert.Len(t, out.Users, 1)
	assert.Empty(t, out.Tarifas)
}

func TestSyncStatus_DemoSinNube(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodGet, "/api/sync/status", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st dto.SyncStatusResponse
	decode(t, resp, &st)
	assert.Equal(t, "demo", st.Source)
	assert.Equal(t, "skipped", st.Remote)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tarifas
// ──────────────────────────────────────────────────────────────────────────────

func TestTarifas_SinVerPVP_OcultaPVP(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "Carnicero Demo", "0000")

	resp := call(t, app, http.MethodGet, "/api/tarifas?zona=CH1", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Items)
	assert.Equal(t, len(out.Items), out.Total)
	for _, it := range out.Items {
		assert.NotContains(t, it, "pvp")
		assert.Equal(t, "CH1", it["zona"])
	}
}

func TestTarifas_ConVerPVP_IncluyePVP(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodGet, "/api/tarifas?q=5001", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.TarifaListResponse
	decode(t, resp, &out)
	require.Len(t, out.Items, 1)
	require.NotNil(t, out.Items[0].PVP)
	assert.Equal(t, "1.2", out.Items[0].PVP.String())
	assert.True(t, out.Items[0].Oferta)
}

func TestTarifasPDF_DevuelvePDF(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodGet, "/api/tarifas/pdf?zona=CH1", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Chat
// ──────────────────────────────────────────────────────────────────────────────

func TestChat_IniciarYEnviar(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodPost, "/api/chat/session", tok, dto.StartChatRequest{Context: "Tarifa CH1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var started dto.StartChatResponse
	decode(t, resp, &started)
	assert.True(t, started.Ready)
	assert.Equal(t, chat.WelcomeText, started.Welcome.Text)

	resp = call(t, app, http.MethodPost, "/api/chat/messages", tok, dto.SendMessageRequest{Text: "hola"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.SendMessageResponse
	decode(t, resp, &out)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "hola", out.Messages[0].Text)
	assert.Equal(t, "eco: hola", out.Messages[1].Text)
}

func TestChat_TextoVacio_Retorna400(t *testing.T) {
	app := newTestServer(t)
	tok := login(t, app, "admin", "admin")

	resp := call(t, app, http.MethodPost, "/api/chat/messages", tok, dto.SendMessageRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
