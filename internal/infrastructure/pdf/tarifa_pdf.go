// Package pdf implementa la lista de precios imprimible (tarifa) en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa             │  TARIFA + zona + fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FAMILIA (una banda por familia, en el orden del catálogo)  │
//	│  TABLA: Código | Descripción | Ud | Zona | Precio | [PVP]    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de líneas + última actualización             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 140, Green: 20, Blue: 30}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorOffer   = &props.Color{Red: 200, Green: 90, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.TarifaPDFGenerator = (*MarotoTarifaPDF)(nil)

// MarotoTarifaPDF implementa ports.TarifaPDFGenerator usando Maroto v2.
type MarotoTarifaPDF struct{}

// NewMarotoTarifaPDF construye el generador.
func NewMarotoTarifaPDF() *MarotoTarifaPDF { return &MarotoTarifaPDF{} }

// GenerateTarifas genera el PDF de la lista y devuelve sus bytes. La columna PVP solo
// aparece si showPVP es true.
func (g *MarotoTarifaPDF) GenerateTarifas(list dto.TarifaListResponse, showPVP bool) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tarifa de precios", true).
		WithAuthor(list.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(list))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow(showPVP))

	familia := "\x00"
	for _, it := range list.Items {
		if it.Familia != familia {
			familia = it.Familia
			m.AddRows(familyRow(it))
		}
		m.AddRows(itemRow(it, showPVP))
	}
	if len(list.Items) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("No hay tarifas para los filtros seleccionados.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(list))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y título + zonas (der).
func headerRow(list dto.TarifaListResponse) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(list.CompanyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("TARIFA DE PRECIOS", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Zona: "+nonEmpty(zonas(list.Items), "todas"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(showPVP bool) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	desc := 6
	if !showPVP {
		desc = 8
	}
	cols := []core.Col{
		h("Código", 1, align.Left),
		h("Descripción", desc, align.Left),
		h("Ud.", 1, align.Center),
		h("Precio", 2, align.Right),
	}
	if showPVP {
		cols = append(cols, h("PVP", 2, align.Right))
	}
	return row.New(8).Add(cols...)
}

func familyRow(it dto.TarifaItemDTO) core.Row {
	label := nonEmpty(it.FamiliaNombre, nonEmpty(it.Familia, "Sin familia"))
	return row.New(7).Add(col.New(12).Add(
		text.New(strings.ToUpper(label), props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}),
	))
}

func itemRow(it dto.TarifaItemDTO, showPVP bool) core.Row {
	desc := 6
	if !showPVP {
		desc = 8
	}
	descProps := props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1}
	label := it.Descripcion
	if it.Oferta {
		label += "  (OFERTA)"
		descProps.Color = colorOffer
	}
	cols := []core.Col{
		col.New(1).Add(text.New(it.Codigo, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(desc).Add(text.New(label, descProps)),
		col.New(1).Add(text.New(it.Unidad, props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(FormatEuro(it.Precio), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	}
	if showPVP {
		pvp := "—"
		if it.PVP != nil {
			pvp = FormatEuro(*it.PVP)
		}
		cols = append(cols, col.New(2).Add(text.New(pvp, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func footerRow(list dto.TarifaListResponse) core.Row {
	return row.New(8).Add(
		col.New(6).Add(text.New(fmt.Sprintf("%d artículos", list.Total), props.Text{
			Size: 7, Color: colorGray, Top: 2,
		})),
		col.New(6).Add(text.New("Actualizado: "+list.LastUpdated, props.Text{
			Size: 7, Align: align.Right, Color: colorGray, Top: 2,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func zonas(items []dto.TarifaItemDTO) string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Zona != "" && !seen[it.Zona] {
			seen[it.Zona] = true
			out = append(out, it.Zona)
		}
	}
	return strings.Join(out, ", ")
}

// FormatEuro formatea un importe con dos decimales, coma decimal y puntos de miles.
// Ej: 1234.5 → "1.234,50 €"
func FormatEuro(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := formatThousands(intPart) + "," + frac + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
