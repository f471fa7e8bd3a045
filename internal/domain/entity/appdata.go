package entity

import (
	"encoding/json"
	"maps"
)

// Record documento JSON libre (artículo, tarifa, grupo, familia) que se transporta tal cual.
type Record map[string]any

// Collection colección que se transporta tal cual. Los objetos se guardan como Record y
// cualquier otro elemento se conserva sin tocar.
type Collection []any

// NewCollection construye una colección con los registros dados.
func NewCollection(records []Record) Collection {
	out := make(Collection, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// Records devuelve los elementos que son objetos, en orden.
func (c Collection) Records() []Record {
	out := make([]Record, 0, len(c))
	for _, v := range c {
		switch t := v.(type) {
		case Record:
			out = append(out, t)
		case map[string]any:
			out = append(out, Record(t))
		}
	}
	return out
}

// AppData es el documento único con todo el dataset de la aplicación.
// Después de pasar por el sanitizador ninguna colección es nil.
type AppData struct {
	Users       []User        `json:"users"`
	Pos         []PointOfSale `json:"pos"`
	Articulos   Collection    `json:"articulos"`
	Tarifas     Collection    `json:"tarifas"`
	Groups      Collection    `json:"groups"`
	Families    any           `json:"families"` // normalmente una Collection; si llega otra forma se conserva
	CompanyName string        `json:"companyName"`
	LastUpdated string        `json:"lastUpdated"` // fecha legible, no parseable
	Reports     []any         `json:"reports"`
	Backups     []any         `json:"backups"`
}

// FamilyRecords familias que son objetos. Vacío si families no es una lista.
func (d AppData) FamilyRecords() []Record {
	if c, ok := d.Families.(Collection); ok {
		return c.Records()
	}
	return nil
}

// Clone devuelve una copia profunda; el valor memorizado nunca se comparte mutable con los llamadores.
func (d AppData) Clone() AppData {
	out := d
	out.Users = make([]User, len(d.Users))
	for i, u := range d.Users {
		u.Extra = cloneMap(u.Extra)
		out.Users[i] = u
	}
	out.Pos = make([]PointOfSale, len(d.Pos))
	for i, p := range d.Pos {
		p.Extra = cloneMap(p.Extra)
		out.Pos[i] = p
	}
	out.Articulos = cloneCollection(d.Articulos)
	out.Tarifas = cloneCollection(d.Tarifas)
	out.Groups = cloneCollection(d.Groups)
	out.Families = cloneValue(d.Families)
	out.Reports = cloneSlice(d.Reports)
	out.Backups = cloneSlice(d.Backups)
	return out
}

func cloneCollection(in Collection) Collection {
	if in == nil {
		return nil
	}
	return Collection(cloneSlice(in))
}

func cloneSlice(in []any) []any {
	if in == nil {
		return nil
	}
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Record:
		return Record(cloneMap(t))
	case []any:
		return cloneSlice(t)
	case Collection:
		return cloneCollection(t)
	default:
		return v
	}
}

// marshalWithExtra serializa known y mezcla extra por debajo (los campos conocidos ganan).
func marshalWithExtra(known any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	merged := maps.Clone(extra)
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	maps.Copy(merged, fields)
	return json.Marshal(merged)
}

// extraFields devuelve las claves de b que no están en known (nil si no hay).
func extraFields(b []byte, known []string) (map[string]any, error) {
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
