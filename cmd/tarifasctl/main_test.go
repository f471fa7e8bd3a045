package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv configura una caché SQLite temporal y ninguna nube.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CACHE_DRIVER", "sqlite")
	t.Setenv("CACHE_DIR", dir)
	t.Setenv("CACHE_STORE_NAME", "CtlTestDB_v1")
	t.Setenv("REMOTE_DATABASE_URL", "")
	t.Setenv("REMOTE_PROJECT_ID", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBackup_SinNubeNiCache_ExportaDemo(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "backup")
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Contains(t, data["companyName"], "DEMO")
	assert.Len(t, data["users"], 3)
}

func TestImportTarifas_MezclaYPersiste(t *testing.T) {
	dir := setupEnv(t)
	csvPath := filepath.Join(dir, "tarifas.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("código;zona;precio;pvp\n1001;CH1;19,00;25,50\n9001;CH1;3,20;\n"), 0o600))

	out, err := run(t, "import-tarifas", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 tarifas importadas (11 en total)")
	assert.Contains(t, out, "nube: skipped")

	out, err = run(t, "backup")
	require.NoError(t, err)
	var data struct {
		Tarifas []map[string]any `json:"tarifas"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	require.Len(t, data.Tarifas, 11)
	assert.InDelta(t, 19.0, data.Tarifas[0]["precio"], 0.0001)
	assert.Equal(t, "9001", data.Tarifas[10]["código"])
}

func TestRestore_SinUsuarios_Error(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"companyName":"X"}`), 0o600))

	_, err := run(t, "restore", path)
	assert.Error(t, err)
}

func TestRestore_ReemplazaDataset(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"id":"7","nombre":"jefe","clave":"x","rol":"admin"}],"companyName":"Restaurada"}`), 0o600))

	_, err := run(t, "restore", path)
	require.NoError(t, err)

	out, err := run(t, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, `"companyName": "Restaurada"`)
}

func TestPDF_EscribeArchivo(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "tarifa.pdf")

	_, err := run(t, "pdf", "--zona", "CH1", "--pvp", "-o", path)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestPushCollections_SinNube_Error(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "push-collections")
	assert.Error(t, err)
}
