package ports

import (
	"context"
)

// SessionConfig configuración de una sesión de chat con el modelo.
type SessionConfig struct {
	SystemInstruction string
	Temperature       float32
}

// ChatProvider define el puerto de salida hacia el servicio de IA conversacional.
// Cualquier adaptador (Gemini, Anthropic, mock) debe implementar esta interfaz; la aplicación
// solo conoce este contrato, no la implementación concreta.
type ChatProvider interface {
	// NewSession abre una conversación nueva con la instrucción de sistema dada.
	// Sin credenciales válidas debe devolver un error que mencione "API key".
	NewSession(ctx context.Context, cfg SessionConfig) (ChatSession, error)
}

// ChatSession conversación con historial mantenido por el proveedor.
type ChatSession interface {
	// Send envía un turno del usuario y devuelve el texto generado (puede ser vacío).
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	Send(ctx context.Context, text string) (string, error)
}
