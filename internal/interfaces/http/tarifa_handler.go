package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/application/usecase"
)

// TarifaHandler lista de precios y su exportación a PDF.
type TarifaHandler struct {
	uc *usecase.TarifaUseCase
}

// NewTarifaHandler construye el handler.
func NewTarifaHandler(uc *usecase.TarifaUseCase) *TarifaHandler {
	return &TarifaHandler{uc: uc}
}

// List godoc
// @Summary      Lista de precios
// @Description  Cruza tarifas con artículos. El PVP solo se incluye si el usuario tiene verPVP.
// @Tags         tarifas
// @Security     Bearer
// @Produce      json
// @Param        zona     query  string  false  "zona de tarifa"
// @Param        familia  query  string  false  "id de familia"
// @Param        q        query  string  false  "texto en código o descripción"
// @Success      200  {object}  dto.TarifaListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/tarifas [get]
func (h *TarifaHandler) List(c *fiber.Ctx) error {
	var f dto.TarifaFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	res, err := h.uc.List(c.UserContext(), f, GetIdentity(c).VerPVP)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "DATA_UNAVAILABLE", Message: err.Error()})
	}
	return c.JSON(res)
}

// PDF godoc
// @Summary      Lista de precios en PDF
// @Tags         tarifas
// @Security     Bearer
// @Produce      application/pdf
// @Param        zona     query  string  false  "zona de tarifa"
// @Param        familia  query  string  false  "id de familia"
// @Param        q        query  string  false  "texto en código o descripción"
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/tarifas/pdf [get]
func (h *TarifaHandler) PDF(c *fiber.Ctx) error {
	var f dto.TarifaFilter
	if err := c.QueryParser(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	b, err := h.uc.ExportPDF(c.UserContext(), f, GetIdentity(c).VerPVP)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_FAILED", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tarifa.pdf"`)
	return c.Send(b)
}
