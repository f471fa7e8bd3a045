package ports

import "github.com/jhoicas/consulta-tarifas/internal/application/dto"

// TarifaPDFGenerator genera la representación imprimible de una lista de precios.
type TarifaPDFGenerator interface {
	GenerateTarifas(list dto.TarifaListResponse, showPVP bool) ([]byte, error)
}
