package dto

import "github.com/shopspring/decimal"

// TarifaFilter filtros de la vista de tarifas.
type TarifaFilter struct {
	Zona    string `query:"zona"`
	Familia string `query:"familia"`
	Q       string `query:"q"` // texto libre sobre código y descripción
}

// TarifaItemDTO línea de la lista de precios. PVP es nil si el usuario no puede verlo.
type TarifaItemDTO struct {
	Codigo        string           `json:"codigo"`
	Descripcion   string           `json:"descripcion"`
	Familia       string           `json:"familia"`
	FamiliaNombre string           `json:"familia_nombre"`
	Unidad        string           `json:"unidad"`
	Zona          string           `json:"zona"`
	Precio        decimal.Decimal  `json:"precio"`
	PVP           *decimal.Decimal `json:"pvp,omitempty"`
	Oferta        bool             `json:"oferta"`
}

// TarifaListResponse lista de precios con los datos de cabecera.
type TarifaListResponse struct {
	CompanyName string          `json:"company_name"`
	LastUpdated string          `json:"last_updated"`
	Items       []TarifaItemDTO `json:"items"`
	Total       int             `json:"total"`
}
