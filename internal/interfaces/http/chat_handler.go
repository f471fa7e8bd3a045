package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/consulta-tarifas/internal/application/chat"
	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
)

// ChatHandler endpoints del asistente de IA.
type ChatHandler struct {
	chat *chat.Manager
}

// NewChatHandler construye el handler.
func NewChatHandler(m *chat.Manager) *ChatHandler {
	return &ChatHandler{chat: m}
}

// Start godoc
// @Summary      Iniciar conversación
// @Description  Crea una sesión nueva con los datos que ve el usuario y devuelve el saludo.
// @Tags         chat
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartChatRequest  false  "contexto"
// @Success      200   {object}  dto.StartChatResponse
// @Router       /api/chat/session [post]
func (h *ChatHandler) Start(c *fiber.Ctx) error {
	var in dto.StartChatRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	err := h.chat.StartNewChat(c.UserContext(), in.Context)
	return c.JSON(dto.StartChatResponse{
		Welcome: h.chat.WelcomeMessage(),
		Ready:   err == nil,
	})
}

// Send godoc
// @Summary      Enviar mensaje al asistente
// @Description  Devuelve el mensaje del usuario y la respuesta del bot; los fallos de la IA llegan como texto del bot.
// @Tags         chat
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendMessageRequest  true  "texto"
// @Success      200   {object}  dto.SendMessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/chat/messages [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var in dto.SendMessageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "text es requerido"})
	}
	user, bot := h.chat.Converse(c.UserContext(), in.Text)
	return c.JSON(dto.SendMessageResponse{Messages: []entity.Message{user, bot}})
}
