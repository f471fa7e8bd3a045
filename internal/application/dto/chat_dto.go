package dto

import "github.com/jhoicas/consulta-tarifas/internal/domain/entity"

// StartChatRequest abre una conversación con la instantánea de datos visible.
type StartChatRequest struct {
	Context string `json:"context"`
}

// StartChatResponse devuelve el saludo inicial del asistente. Ready es false si la
// sesión no pudo crearse; el siguiente mensaje lo reintentará.
type StartChatResponse struct {
	Welcome entity.Message `json:"welcome"`
	Ready   bool           `json:"ready"`
}

// SendMessageRequest turno del usuario.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// SendMessageResponse mensajes generados en el turno, en orden.
type SendMessageResponse struct {
	Messages []entity.Message `json:"messages"`
}
