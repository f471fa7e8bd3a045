package sanitize_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/consulta-tarifas/internal/domain/demo"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/internal/domain/sanitize"
)

// ──────────────────────────────────────────────────────────────────────────────
// Valores por defecto
// ──────────────────────────────────────────────────────────────────────────────

func TestSanitize_EntradaVacia_ColeccionesVaciasNuncaNil(t *testing.T) {
	for _, raw := range []sanitize.RawAppData{
		{},
		sanitize.FromJSON([]byte(`{}`)),
		sanitize.FromJSON([]byte(`null`)),
		sanitize.FromJSON([]byte(`no es json`)),
		sanitize.FromMap(nil),
	} {
		d := sanitize.Sanitize(raw)

		assert.NotNil(t, d.Users)
		assert.NotNil(t, d.Pos)
		assert.NotNil(t, d.Articulos)
		assert.NotNil(t, d.Tarifas)
		assert.NotNil(t, d.Groups)
		assert.NotNil(t, d.Reports)
		assert.NotNil(t, d.Backups)
		assert.Empty(t, d.Users)
		assert.Empty(t, d.Tarifas)

		b, err := json.Marshal(d)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "null", "ninguna colección debe serializarse como null")
	}
}

func TestSanitize_SinFamilias_UsaCatalogoPorDefecto(t *testing.T) {
	d := sanitize.Sanitize(sanitize.RawAppData{})
	assert.Equal(t, entity.NewCollection(demo.Families()), d.Families)
	assert.Len(t, d.FamilyRecords(), 7)

	nulas := sanitize.Sanitize(sanitize.FromJSON([]byte(`{"families": null}`)))
	assert.Equal(t, entity.NewCollection(demo.Families()), nulas.Families)
}

func TestSanitize_ConFamilias_SeConservan(t *testing.T) {
	fams := entity.Collection{entity.Record{"id": "X", "nombre": "Exóticos"}}
	d := sanitize.Sanitize(sanitize.RawAppData{Families: fams})
	assert.Equal(t, fams, d.Families)

	vacias := sanitize.Sanitize(sanitize.FromJSON([]byte(`{"families": []}`)))
	assert.NotNil(t, vacias.Families)
	assert.Empty(t, vacias.Families, "una lista de familias presente pero vacía se conserva")
}

func TestSanitize_EscalaresPorDefecto(t *testing.T) {
	d := sanitize.Sanitize(sanitize.FromJSON([]byte(`{"companyName": "   ", "lastUpdated": null}`)))
	assert.Equal(t, sanitize.DefaultCompanyName, d.CompanyName)
	assert.Equal(t, sanitize.DefaultLastUpdated, d.LastUpdated)

	d = sanitize.Sanitize(sanitize.FromJSON([]byte(`{"companyName": " ACME ", "lastUpdated": "01/02/2025, 10:00:00"}`)))
	assert.Equal(t, "ACME", d.CompanyName)
	assert.Equal(t, "01/02/2025, 10:00:00", d.LastUpdated)
}

func TestSanitize_FormaIncorrecta_UsuariosYPuntosDeVenta(t *testing.T) {
	d := sanitize.Sanitize(sanitize.FromJSON([]byte(`{
		"users": "no soy una lista",
		"pos": [1, "x", {"zona": "CH1"}],
		"tarifas": "tampoco"
	}`)))

	assert.Empty(t, d.Users)
	require.Len(t, d.Pos, 1, "los elementos que no son objetos se descartan")
	assert.Equal(t, "CH1", d.Pos[0].Zona)
	assert.NotNil(t, d.Tarifas)
	assert.Empty(t, d.Tarifas)
}

// ──────────────────────────────────────────────────────────────────────────────
// Colecciones que se transportan tal cual
// ──────────────────────────────────────────────────────────────────────────────

func TestSanitize_ColeccionesConservanElementosQueNoSonObjetos(t *testing.T) {
	in := `{
		"families": [{"id": "X"}, "Cerdo"],
		"articulos": ["a", {"c": 1}],
		"tarifas": [{"código": "1"}, 42, null],
		"groups": [["g1"], {"id": "g2"}]
	}`
	d := sanitize.Sanitize(sanitize.FromJSON([]byte(in)))

	assert.Equal(t, entity.Collection{entity.Record{"id": "X"}, "Cerdo"}, d.Families)
	assert.Equal(t, entity.Collection{"a", entity.Record{"c": float64(1)}}, d.Articulos)
	assert.Len(t, d.Tarifas, 3)
	assert.Len(t, d.Tarifas.Records(), 1)
	assert.Len(t, d.Groups, 2)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	var orig map[string]any
	require.NoError(t, json.Unmarshal([]byte(in), &orig))
	for _, k := range []string{"families", "articulos", "tarifas", "groups"} {
		assert.Equal(t, orig[k], out[k], k)
	}
}

func TestSanitize_FamiliasQueNoSonLista_SeConservan(t *testing.T) {
	d := sanitize.Sanitize(sanitize.FromJSON([]byte(`{"families": {"VAC": "Vacuno"}}`)))

	assert.Equal(t, map[string]any{"VAC": "Vacuno"}, d.Families)
	assert.Empty(t, d.FamilyRecords())

	again := sanitize.Sanitize(sanitize.FromAppData(d))
	assert.Equal(t, d.Families, again.Families)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registros de usuarios y puntos de venta
// ──────────────────────────────────────────────────────────────────────────────

func TestSanitize_IDExistente_SeConservaComoTextoRecortado(t *testing.T) {
	d := sanitize.Sanitize(sanitize.FromJSON([]byte(`{
		"users": [{"id": "  7  ", "nombre": " Ana "}, {"id": 42, "nombre": "Luis"}],
		"pos": [{"id": 3, "zona": " CH2 "}]
	}`)))

	require.Len(t, d.Users, 2)
	assert.Equal(t, "7", d.Users[0].ID)
	assert.Equal(t, "Ana", d.Users[0].Nombre)
	assert.Equal(t, "42", d.Users[1].ID)
	require.Len(t, d.Pos, 1)
	assert.Equal(t, "3", d.Pos[0].ID)
	assert.Equal(t, "CH2", d.Pos[0].Zona)
}

func TestSanitize_SinID_GeneraID(t *testing.T) {
	n := 0
	s := sanitize.New(sanitize.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}))

	d := s.Sanitize(sanitize.FromJSON([]byte(`{
		"users": [{"nombre": "Sin id"}, {"id": "", "nombre": "Vacío"}, {"id": null}],
		"pos": [{"zona": "CH1"}]
	}`)))

	require.Len(t, d.Users, 3)
	assert.Equal(t, "gen-1", d.Users[0].ID)
	assert.Equal(t, "gen-2", d.Users[1].ID)
	assert.Equal(t, "gen-3", d.Users[2].ID)
	assert.Equal(t, "gen-4", d.Pos[0].ID)
}

// El generador por defecto es aleatorio: el mismo payload produce ids distintos en
// cada sanitización. No hay verificación de colisiones contra ids existentes; esto
// es aceptable para datos de demo pero no es una garantía de corrección en producción.
func TestSanitize_IDGeneradoNoDeterminista(t *testing.T) {
	raw := []byte(`{"users": [{"nombre": "Sin id"}]}`)

	a := sanitize.Sanitize(sanitize.FromJSON(raw))
	b := sanitize.Sanitize(sanitize.FromJSON(raw))

	require.Len(t, a.Users, 1)
	require.Len(t, b.Users, 1)
	assert.NotEmpty(t, a.Users[0].ID)
	assert.NotEmpty(t, b.Users[0].ID)
	assert.NotEqual(t, a.Users[0].ID, b.Users[0].ID, "los ids generados no son reproducibles")
}

func TestSanitize_CamposDeUsuarioNormalizados(t *testing.T) {
	d := sanitize.Sanitize(sanitize.FromJSON([]byte(`{
		"users": [{"id": "1", "nombre": null, "zona": 12, "verPVP": "sí", "telefono": "600000000"}]
	}`)))

	require.Len(t, d.Users, 1)
	u := d.Users[0]
	assert.Equal(t, "", u.Nombre)
	assert.Equal(t, "12", u.Zona)
	assert.True(t, u.VerPVP)
	assert.Equal(t, "600000000", u.Extra["telefono"], "los campos desconocidos se conservan")

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"telefono":"600000000"`)
}

func TestSanitize_Idempotente(t *testing.T) {
	first := sanitize.Sanitize(sanitize.FromMap(demo.Dataset()))

	b, err := json.Marshal(first)
	require.NoError(t, err)
	second := sanitize.Sanitize(sanitize.FromJSON(b))

	assert.Equal(t, first, second)
}

func TestFromAppData_IdaYVuelta(t *testing.T) {
	first := sanitize.Sanitize(sanitize.FromMap(demo.Dataset()))
	again := sanitize.Sanitize(sanitize.FromAppData(first))
	assert.Equal(t, first, again)
}
