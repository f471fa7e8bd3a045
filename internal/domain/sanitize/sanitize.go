// Package sanitize normaliza payloads heterogéneos (nube, caché, demo, restauraciones)
// a la forma canónica entity.AppData.
//
// La entrada se modela como RawAppData: un campo opcional por cada campo de AppData,
// donde nil significa "ausente". Sanitize es una función total: nunca devuelve error
// ni entra en pánico, y cada campo ausente recibe su valor por defecto documentado.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/consulta-tarifas/internal/domain/demo"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
)

// Valores por defecto de los escalares.
const (
	DefaultCompanyName = "Paraíso de la Carne Selección, S.L.U."
	DefaultLastUpdated = "Sin actualizar"
)

// RawAppData payload crudo con campos opcionales (nil = ausente).
type RawAppData struct {
	Users       []map[string]any  // ausente → vacío; cada registro normalizado a entity.User
	Pos         []map[string]any  // ausente → vacío; cada registro normalizado a entity.PointOfSale
	Articulos   entity.Collection // ausente → vacío; se transporta tal cual
	Tarifas     entity.Collection // ausente → vacío; se transporta tal cual
	Groups      entity.Collection // ausente → vacío; se transporta tal cual
	Families    any               // ausente → demo.Families(); presente (con cualquier forma) se conserva
	CompanyName any               // ausente o vacío → DefaultCompanyName
	LastUpdated any               // ausente o vacío → DefaultLastUpdated
	Reports     []any             // ausente → vacío
	Backups     []any             // ausente → vacío
}

// Sanitizer aplica la normalización. El generador de ids es inyectable.
type Sanitizer struct {
	newID func() string
}

// Option configura un Sanitizer.
type Option func(*Sanitizer)

// WithIDGenerator sustituye el generador de ids para registros sin id.
func WithIDGenerator(f func() string) Option {
	return func(s *Sanitizer) {
		if f != nil {
			s.newID = f
		}
	}
}

// New construye un Sanitizer. Por defecto los ids faltantes son UUID v4 aleatorios.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

var defaultSanitizer = New()

// Sanitize normaliza raw con el Sanitizer por defecto.
func Sanitize(raw RawAppData) entity.AppData {
	return defaultSanitizer.Sanitize(raw)
}

// Sanitize normaliza raw a AppData. Ninguna colección del resultado es nil.
func (s *Sanitizer) Sanitize(raw RawAppData) entity.AppData {
	out := entity.AppData{
		Users:       make([]entity.User, 0, len(raw.Users)),
		Pos:         make([]entity.PointOfSale, 0, len(raw.Pos)),
		Articulos:   orEmptyCollection(raw.Articulos),
		Tarifas:     orEmptyCollection(raw.Tarifas),
		Groups:      orEmptyCollection(raw.Groups),
		Families:    families(raw.Families),
		CompanyName: Str(raw.CompanyName),
		LastUpdated: Str(raw.LastUpdated),
		Reports:     orEmpty(raw.Reports),
		Backups:     orEmpty(raw.Backups),
	}
	if out.CompanyName == "" {
		out.CompanyName = DefaultCompanyName
	}
	if out.LastUpdated == "" {
		out.LastUpdated = DefaultLastUpdated
	}
	for _, m := range raw.Users {
		out.Users = append(out.Users, s.user(m))
	}
	for _, m := range raw.Pos {
		out.Pos = append(out.Pos, s.pointOfSale(m))
	}
	return out
}

func (s *Sanitizer) id(v any) string {
	if id := Str(v); id != "" {
		return id
	}
	return s.newID()
}

func (s *Sanitizer) user(m map[string]any) entity.User {
	return entity.User{
		ID:           s.id(m["id"]),
		Nombre:       Str(m["nombre"]),
		Clave:        Str(m["clave"]),
		Zona:         Str(m["zona"]),
		Grupo:        Str(m["grupo"]),
		Departamento: Str(m["departamento"]),
		Rol:          Str(m["rol"]),
		VerPVP:       Bool(m["verPVP"]),
		Extra:        without(m, "id", "nombre", "clave", "zona", "grupo", "departamento", "rol", "verPVP"),
	}
}

func (s *Sanitizer) pointOfSale(m map[string]any) entity.PointOfSale {
	return entity.PointOfSale{
		ID:        s.id(m["id"]),
		Codigo:    Str(m["código"]),
		Zona:      Str(m["zona"]),
		Grupo:     Str(m["grupo"]),
		Direccion: Str(m["dirección"]),
		Poblacion: Str(m["población"]),
		Extra:     without(m, "id", "código", "zona", "grupo", "dirección", "población"),
	}
}

// Str convierte cualquier valor escalar a texto recortado. nil → "".
func Str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Bool interpreta flags guardados como booleanos, números o texto ("true", "si", "sí", "1").
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "si", "sí", "1", "yes":
			return true
		}
	}
	return false
}

func without(m map[string]any, keys ...string) map[string]any {
	var extra map[string]any
	for k, v := range m {
		skip := false
		for _, known := range keys {
			if k == known {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}

func orEmptyCollection(in entity.Collection) entity.Collection {
	if in == nil {
		return entity.Collection{}
	}
	return collection(in)
}

// families normaliza las listas a Collection y deja cualquier otra forma intacta.
func families(v any) any {
	if c, ok := v.(entity.Collection); v == nil || (ok && c == nil) {
		return entity.NewCollection(demo.Families())
	}
	if c := collection(v); c != nil {
		return c
	}
	return v
}

func orEmpty(in []any) []any {
	if in == nil {
		return []any{}
	}
	return in
}
