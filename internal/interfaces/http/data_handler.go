package http

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/consulta-tarifas/internal/application/datasync"
	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/domain"
	"github.com/jhoicas/consulta-tarifas/internal/domain/sanitize"
)

// waitRemoteTimeout límite de espera de ?wait=true; la subida sigue en segundo plano.
const waitRemoteTimeout = 20 * time.Second

// DataHandler expone el dataset de la aplicación y su sincronización.
type DataHandler struct {
	sync *datasync.Synchronizer
}

// NewDataHandler construye el handler.
func NewDataHandler(sync *datasync.Synchronizer) *DataHandler {
	return &DataHandler{sync: sync}
}

// Get godoc
// @Summary      Obtener el dataset completo
// @Description  Devuelve el dataset; la clave de los usuarios solo se incluye para administradores.
// @Tags         data
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.AppData
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/data [get]
func (h *DataHandler) Get(c *fiber.Ctx) error {
	data, err := h.sync.GetAppData(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "DATA_UNAVAILABLE", Message: err.Error()})
	}
	if !IsAdmin(c) {
		for i := range data.Users {
			data.Users[i] = data.Users[i].Redacted()
		}
	}
	return c.JSON(data)
}

// Save godoc
// @Summary      Guardar cambios en el dataset
// @Description  Mezcla los campos presentes sobre el dataset actual y guarda en caché y nube (?wait=true espera la nube).
// @Tags         data
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        wait  query  bool  false  "esperar la subida a la nube"
// @Success      200   {object}  dto.SaveDataResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/data [put]
func (h *DataHandler) Save(c *fiber.Ctx) error {
	body := c.Body()
	if !isJSONObject(body) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se esperaba un objeto JSON"})
	}
	commit, err := h.sync.SaveAllData(c.UserContext(), sanitize.FromJSON(body))
	if err != nil {
		return persistError(c, err)
	}
	return c.JSON(h.saveResponse(c, commit))
}

// Restore godoc
// @Summary      Restaurar una copia de seguridad
// @Description  Reemplaza el dataset completo por el del cuerpo. La copia debe contener usuarios.
// @Tags         data
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.SaveDataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/data/restore [post]
func (h *DataHandler) Restore(c *fiber.Ctx) error {
	body := c.Body()
	if !isJSONObject(body) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se esperaba un objeto JSON"})
	}
	raw := sanitize.FromJSON(body)
	if len(raw.Users) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "la copia de seguridad no contiene usuarios"})
	}
	commit, err := h.sync.OverwriteAllData(c.UserContext(), sanitize.Sanitize(raw))
	if err != nil {
		return persistError(c, err)
	}
	return c.JSON(h.saveResponse(c, commit))
}

// Status godoc
// @Summary      Estado de sincronización
// @Tags         data
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncStatusResponse
// @Router       /api/sync/status [get]
func (h *DataHandler) Status(c *fiber.Ctx) error {
	// Fuerza la carga inicial para que source refleje el origen real.
	_, _ = h.sync.GetAppData(c.UserContext())
	st := h.sync.Status()
	return c.JSON(dto.SyncStatusResponse{
		Source:      string(st.Source),
		Remote:      string(st.Remote),
		RemoteError: st.RemoteError,
		RemoteAt:    st.RemoteAt,
		LastUpdated: st.LastUpdated,
	})
}

func (h *DataHandler) saveResponse(c *fiber.Ctx, commit *datasync.Commit) dto.SaveDataResponse {
	if c.QueryBool("wait") {
		ctx, cancel := context.WithTimeout(c.UserContext(), waitRemoteTimeout)
		defer cancel()
		_ = commit.Remote.Wait(ctx)
	}
	return dto.SaveDataResponse{
		LastUpdated: commit.Data.LastUpdated,
		Remote:      string(commit.Remote.State()),
	}
}

func persistError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrLocalPersist) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "LOCAL_PERSIST_FAILED", Message: "no se pudieron guardar los datos en este dispositivo"})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "DATA_UNAVAILABLE", Message: err.Error()})
}

func isJSONObject(b []byte) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(b, &m) == nil && m != nil
}
