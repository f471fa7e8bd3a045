// Package demo contiene los datos empaquetados con el binario: el catálogo de familias
// por defecto y el dataset de demostración que se usa cuando no hay nube ni caché.
//
// Todas las funciones devuelven copias nuevas; los llamadores pueden mutarlas.
package demo

import "github.com/jhoicas/consulta-tarifas/internal/domain/entity"

// Valores escalares del dataset de demostración.
const (
	CompanyName = "Paraíso de la Carne (DEMO LOCAL / PREVIEW)"
	LastUpdated = "Modo Local Inicial"
)

// Families catálogo de familias por defecto. La agrupación de artículos en las vistas
// de tarifas depende de él, por eso nunca se sustituye por una lista vacía.
func Families() []entity.Record {
	return []entity.Record{
		{"id": "VAC", "nombre": "Vacuno", "orden": float64(1)},
		{"id": "CER", "nombre": "Cerdo", "orden": float64(2)},
		{"id": "POL", "nombre": "Pollo y Aves", "orden": float64(3)},
		{"id": "COR", "nombre": "Cordero", "orden": float64(4)},
		{"id": "ELA", "nombre": "Elaborados", "orden": float64(5)},
		{"id": "EMB", "nombre": "Embutidos y Charcutería", "orden": float64(6)},
		{"id": "VAR", "nombre": "Varios", "orden": float64(7)},
	}
}

// Users usuarios de demostración: un administrador, un supervisor y un carnicero.
func Users() []map[string]any {
	return []map[string]any{
		{
			"id": "1", "nombre": "admin", "clave": "admin", "zona": "OFI",
			"grupo": "Administración", "departamento": "Supervisor", "rol": entity.RoleAdmin, "verPVP": true,
		},
		{
			"id": "2", "nombre": "Supervisor Zona", "clave": "1234", "zona": "ZN1",
			"grupo": "Grupo A", "departamento": "Supervisor", "rol": entity.RoleSupervisor, "verPVP": true,
		},
		{
			"id": "3", "nombre": "Carnicero Demo", "clave": "0000", "zona": "CH1",
			"grupo": "Grupo A", "departamento": "Carnicero/a", "rol": entity.RoleNormal, "verPVP": false,
		},
	}
}

// PointsOfSale puntos de venta de demostración.
func PointsOfSale() []map[string]any {
	return []map[string]any{
		{"id": "pos1", "código": "01", "zona": "CH1", "grupo": "Grupo A", "dirección": "C/ Mayor 1", "población": "Madrid"},
		{"id": "pos2", "código": "02", "zona": "ZN1", "grupo": "Grupo A", "dirección": "Oficina Central", "población": "Madrid"},
	}
}

// Groups grupos de demostración.
func Groups() []entity.Record {
	return []entity.Record{
		{"id": "g1", "nombre": "Grupo A"},
		{"id": "g2", "nombre": "Grupo B"},
	}
}

// Articulos artículos de demostración.
func Articulos() []entity.Record {
	return []entity.Record{
		{"código": "1001", "descripción": "Entrecot de vacuno", "familia": "VAC", "unidad": "kg"},
		{"código": "1002", "descripción": "Carne picada de vacuno", "familia": "VAC", "unidad": "kg"},
		{"código": "2001", "descripción": "Lomo de cerdo", "familia": "CER", "unidad": "kg"},
		{"código": "2002", "descripción": "Costilla de cerdo", "familia": "CER", "unidad": "kg"},
		{"código": "3001", "descripción": "Pechuga de pollo", "familia": "POL", "unidad": "kg"},
		{"código": "4001", "descripción": "Chuletas de cordero", "familia": "COR", "unidad": "kg"},
		{"código": "5001", "descripción": "Hamburguesa casera", "familia": "ELA", "unidad": "ud"},
		{"código": "6001", "descripción": "Chorizo ibérico", "familia": "EMB", "unidad": "kg"},
	}
}

// Tarifas entradas de tarifa de demostración (precio de coste de tienda y PVP por zona).
func Tarifas() []entity.Record {
	return []entity.Record{
		{"código": "1001", "zona": "CH1", "precio": 18.50, "pvp": 24.90, "oferta": false},
		{"código": "1002", "zona": "CH1", "precio": 7.20, "pvp": 9.95, "oferta": true},
		{"código": "2001", "zona": "CH1", "precio": 6.80, "pvp": 8.99, "oferta": false},
		{"código": "2002", "zona": "CH1", "precio": 5.10, "pvp": 6.95, "oferta": false},
		{"código": "3001", "zona": "CH1", "precio": 6.40, "pvp": 8.49, "oferta": false},
		{"código": "4001", "zona": "CH1", "precio": 14.90, "pvp": 19.50, "oferta": false},
		{"código": "5001", "zona": "CH1", "precio": "0,85", "pvp": "1,20", "oferta": true},
		{"código": "6001", "zona": "CH1", "precio": 11.30, "pvp": 15.90, "oferta": false},
		{"código": "1001", "zona": "ZN1", "precio": 18.10, "pvp": 24.50, "oferta": false},
		{"código": "2001", "zona": "ZN1", "precio": 6.60, "pvp": 8.79, "oferta": false},
	}
}

// Dataset devuelve el dataset completo de demostración como payload crudo para el sanitizador.
func Dataset() map[string]any {
	return map[string]any{
		"users":       toAnySlice(Users()),
		"pos":         toAnySlice(PointsOfSale()),
		"groups":      recordsToAny(Groups()),
		"articulos":   recordsToAny(Articulos()),
		"tarifas":     recordsToAny(Tarifas()),
		"families":    recordsToAny(Families()),
		"companyName": CompanyName,
		"lastUpdated": LastUpdated,
	}
}

func toAnySlice(in []map[string]any) []any {
	out := make([]any, len(in))
	for i, m := range in {
		out[i] = m
	}
	return out
}

func recordsToAny(in []entity.Record) []any {
	out := make([]any, len(in))
	for i, r := range in {
		out[i] = map[string]any(r)
	}
	return out
}
