package sanitize

import (
	"encoding/json"

	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
)

// FromJSON decodifica b de forma tolerante. JSON inválido o que no sea un objeto
// produce un RawAppData vacío (todos los campos ausentes).
func FromJSON(b []byte) RawAppData {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return RawAppData{}
	}
	return FromMap(m)
}

// FromMap construye RawAppData desde un documento genérico. Los campos con forma
// incorrecta se tratan como ausentes. En usuarios y puntos de venta los elementos que
// no son objetos se descartan; en el resto de colecciones se conservan. families se
// conserva con cualquier forma.
func FromMap(m map[string]any) RawAppData {
	if m == nil {
		return RawAppData{}
	}
	return RawAppData{
		Users:       objects(m["users"]),
		Pos:         objects(m["pos"]),
		Articulos:   collection(m["articulos"]),
		Tarifas:     collection(m["tarifas"]),
		Groups:      collection(m["groups"]),
		Families:    m["families"],
		CompanyName: m["companyName"],
		LastUpdated: m["lastUpdated"],
		Reports:     slice(m["reports"]),
		Backups:     slice(m["backups"]),
	}
}

// FromAppData convierte un AppData tipado en payload crudo para volver a sanitizarlo.
// Las colecciones nil quedan ausentes y reciben sus valores por defecto.
func FromAppData(d entity.AppData) RawAppData {
	raw := RawAppData{
		Articulos: d.Articulos,
		Tarifas:   d.Tarifas,
		Groups:    d.Groups,
		Families:  d.Families,
		Reports:   d.Reports,
		Backups:   d.Backups,
	}
	if d.CompanyName != "" {
		raw.CompanyName = d.CompanyName
	}
	if d.LastUpdated != "" {
		raw.LastUpdated = d.LastUpdated
	}
	if d.Users != nil {
		raw.Users = make([]map[string]any, len(d.Users))
		for i, u := range d.Users {
			raw.Users[i] = UserToMap(u)
		}
	}
	if d.Pos != nil {
		raw.Pos = make([]map[string]any, len(d.Pos))
		for i, p := range d.Pos {
			raw.Pos[i] = PointOfSaleToMap(p)
		}
	}
	return raw
}

// UserToMap aplana un usuario (campos extra incluidos) a documento genérico.
func UserToMap(u entity.User) map[string]any {
	m := make(map[string]any, len(u.Extra)+8)
	for k, v := range u.Extra {
		m[k] = v
	}
	m["id"] = u.ID
	m["nombre"] = u.Nombre
	m["clave"] = u.Clave
	m["zona"] = u.Zona
	m["grupo"] = u.Grupo
	m["departamento"] = u.Departamento
	m["rol"] = u.Rol
	m["verPVP"] = u.VerPVP
	return m
}

// PointOfSaleToMap aplana un punto de venta (campos extra incluidos) a documento genérico.
func PointOfSaleToMap(p entity.PointOfSale) map[string]any {
	m := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["id"] = p.ID
	m["código"] = p.Codigo
	m["zona"] = p.Zona
	m["grupo"] = p.Grupo
	m["dirección"] = p.Direccion
	m["población"] = p.Poblacion
	return m
}

func slice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	case []entity.Record:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out
	case entity.Collection:
		return t
	}
	return nil
}

func objects(v any) []map[string]any {
	items := slice(v)
	if items == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		switch m := it.(type) {
		case map[string]any:
			out = append(out, m)
		case entity.Record:
			out = append(out, map[string]any(m))
		}
	}
	return out
}

// collection conserva todos los elementos; solo los objetos se envuelven como Record.
func collection(v any) entity.Collection {
	items := slice(v)
	if items == nil {
		return nil
	}
	out := make(entity.Collection, len(items))
	for i, it := range items {
		if m, ok := it.(map[string]any); ok {
			out[i] = entity.Record(m)
			continue
		}
		out[i] = it
	}
	return out
}

// Merge superpone los campos presentes (no nil) de patch sobre base.
func Merge(base, patch RawAppData) RawAppData {
	if patch.Users != nil {
		base.Users = patch.Users
	}
	if patch.Pos != nil {
		base.Pos = patch.Pos
	}
	if patch.Articulos != nil {
		base.Articulos = patch.Articulos
	}
	if patch.Tarifas != nil {
		base.Tarifas = patch.Tarifas
	}
	if patch.Groups != nil {
		base.Groups = patch.Groups
	}
	if patch.Families != nil {
		base.Families = patch.Families
	}
	if patch.CompanyName != nil {
		base.CompanyName = patch.CompanyName
	}
	if patch.LastUpdated != nil {
		base.LastUpdated = patch.LastUpdated
	}
	if patch.Reports != nil {
		base.Reports = patch.Reports
	}
	if patch.Backups != nil {
		base.Backups = patch.Backups
	}
	return base
}
