package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/consulta-tarifas/internal/application/auth"
	"github.com/jhoicas/consulta-tarifas/internal/application/chat"
	"github.com/jhoicas/consulta-tarifas/internal/application/datasync"
	"github.com/jhoicas/consulta-tarifas/internal/application/usecase"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Sync      *datasync.Synchronizer
	TarifaUC  *usecase.TarifaUseCase
	Chat      *chat.Manager
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestLogger(deps.Log))

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Dataset y sincronización
	dataHandler := NewDataHandler(deps.Sync)
	protected.Get("/data", dataHandler.Get)
	protected.Put("/data", adminOnly, dataHandler.Save)
	protected.Post("/data/restore", adminOnly, dataHandler.Restore)
	protected.Get("/sync/status", dataHandler.Status)

	// Tarifas
	tarifaHandler := NewTarifaHandler(deps.TarifaUC)
	protected.Get("/tarifas", tarifaHandler.List)
	protected.Get("/tarifas/pdf", tarifaHandler.PDF)

	// Asistente IA
	chatHandler := NewChatHandler(deps.Chat)
	protected.Post("/chat/session", chatHandler.Start)
	protected.Post("/chat/messages", chatHandler.Send)
}
