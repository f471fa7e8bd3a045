package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/internal/domain/sanitize"
)

// AppDataReader fuente del dataset (el sincronizador).
type AppDataReader interface {
	GetAppData(ctx context.Context) (entity.AppData, error)
}

// TarifaUseCase vista de la lista de precios: cruza tarifas con artículos por código.
type TarifaUseCase struct {
	src AppDataReader
	pdf ports.TarifaPDFGenerator
}

// NewTarifaUseCase construye el caso de uso. pdf puede ser nil si no se exporta a PDF.
func NewTarifaUseCase(src AppDataReader, pdf ports.TarifaPDFGenerator) *TarifaUseCase {
	return &TarifaUseCase{src: src, pdf: pdf}
}

// List devuelve las líneas de tarifa que cumplen el filtro, ordenadas por familia
// (según el orden del catálogo) y código. Si verPVP es false el PVP no se incluye.
func (uc *TarifaUseCase) List(ctx context.Context, f dto.TarifaFilter, verPVP bool) (*dto.TarifaListResponse, error) {
	data, err := uc.src.GetAppData(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTarifaList(data, f, verPVP), nil
}

// ExportPDF genera el PDF de la misma vista que List.
func (uc *TarifaUseCase) ExportPDF(ctx context.Context, f dto.TarifaFilter, verPVP bool) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("pdf: generador no configurado")
	}
	list, err := uc.List(ctx, f, verPVP)
	if err != nil {
		return nil, err
	}
	b, err := uc.pdf.GenerateTarifas(*list, verPVP)
	if err != nil {
		return nil, fmt.Errorf("pdf: generar tarifas: %w", err)
	}
	return b, nil
}

// BuildTarifaList arma la vista de tarifas a partir del dataset.
func BuildTarifaList(data entity.AppData, f dto.TarifaFilter, verPVP bool) *dto.TarifaListResponse {
	articulos := make(map[string]entity.Record, len(data.Articulos))
	for _, a := range data.Articulos.Records() {
		articulos[sanitize.Str(a["código"])] = a
	}
	familyRecords := data.FamilyRecords()
	familias := make(map[string]entity.Record, len(familyRecords))
	for _, fam := range familyRecords {
		familias[sanitize.Str(fam["id"])] = fam
	}

	zona := strings.TrimSpace(f.Zona)
	familia := strings.TrimSpace(f.Familia)
	q := strings.ToLower(strings.TrimSpace(f.Q))

	items := make([]dto.TarifaItemDTO, 0, len(data.Tarifas))
	for _, t := range data.Tarifas.Records() {
		codigo := sanitize.Str(t["código"])
		art := articulos[codigo]
		item := dto.TarifaItemDTO{
			Codigo:      codigo,
			Descripcion: sanitize.Str(art["descripción"]),
			Familia:     sanitize.Str(art["familia"]),
			Unidad:      sanitize.Str(art["unidad"]),
			Zona:        sanitize.Str(t["zona"]),
			Precio:      ParsePrice(t["precio"]),
			Oferta:      sanitize.Bool(t["oferta"]),
		}
		if fam, ok := familias[item.Familia]; ok {
			item.FamiliaNombre = sanitize.Str(fam["nombre"])
		}

		if zona != "" && !strings.EqualFold(item.Zona, zona) {
			continue
		}
		if familia != "" && !strings.EqualFold(item.Familia, familia) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(item.Codigo), q) &&
			!strings.Contains(strings.ToLower(item.Descripcion), q) {
			continue
		}
		if verPVP {
			if v, present := t["pvp"]; present && v != nil {
				pvp := ParsePrice(v)
				item.PVP = &pvp
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := familyOrder(familias, items[i].Familia), familyOrder(familias, items[j].Familia)
		if oi != oj {
			return oi < oj
		}
		if items[i].Codigo != items[j].Codigo {
			return items[i].Codigo < items[j].Codigo
		}
		return items[i].Zona < items[j].Zona
	})

	return &dto.TarifaListResponse{
		CompanyName: data.CompanyName,
		LastUpdated: data.LastUpdated,
		Items:       items,
		Total:       len(items),
	}
}

// ParsePrice interpreta un precio numérico o de texto con coma decimal ("1.234,56").
// Los valores no reconocibles valen cero.
func ParsePrice(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case decimal.Decimal:
		return t
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
		return decimal.Zero
	}
	d, err := ParsePriceString(sanitize.Str(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParsePriceString como ParsePrice pero para texto, devolviendo error si no es un importe.
func ParsePriceString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// familyOrder posición de la familia en el catálogo; las desconocidas van al final.
func familyOrder(familias map[string]entity.Record, id string) float64 {
	fam, ok := familias[id]
	if !ok {
		return 1 << 30
	}
	if o, ok := fam["orden"].(float64); ok {
		return o
	}
	return 1 << 29
}
