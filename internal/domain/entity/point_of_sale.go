package entity

import "encoding/json"

// PointOfSale punto de venta (tienda/carnicería u oficina) asignado a una zona.
type PointOfSale struct {
	ID        string         `json:"id"`
	Codigo    string         `json:"código"`
	Zona      string         `json:"zona"`
	Grupo     string         `json:"grupo"`
	Direccion string         `json:"dirección"`
	Poblacion string         `json:"población"`
	Extra     map[string]any `json:"-"`
}

var posKnownKeys = []string{"id", "código", "zona", "grupo", "dirección", "población"}

type posAlias PointOfSale

// MarshalJSON serializa los campos conocidos y vuelve a mezclar los campos extra.
func (p PointOfSale) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(posAlias(p), p.Extra)
}

// UnmarshalJSON lee los campos conocidos y guarda el resto en Extra.
func (p *PointOfSale) UnmarshalJSON(b []byte) error {
	var a posAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := extraFields(b, posKnownKeys)
	if err != nil {
		return err
	}
	a.Extra = extra
	*p = PointOfSale(a)
	return nil
}
