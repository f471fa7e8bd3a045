package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/consulta-tarifas/internal/application/auth"
	"github.com/jhoicas/consulta-tarifas/internal/application/chat"
	"github.com/jhoicas/consulta-tarifas/internal/application/datasync"
	"github.com/jhoicas/consulta-tarifas/internal/application/usecase"
	infraai "github.com/jhoicas/consulta-tarifas/internal/infrastructure/ai"
	infrapdf "github.com/jhoicas/consulta-tarifas/internal/infrastructure/pdf"
	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/stores"
	httpRouter "github.com/jhoicas/consulta-tarifas/internal/interfaces/http"
	"github.com/jhoicas/consulta-tarifas/pkg/config"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	st, err := stores.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenes")
	}

	dataSync := datasync.New(st.Cache, st.RemoteStore(), log,
		datasync.WithRemoteTimeout(cfg.Remote.Timeout),
	)

	// Carga inicial en segundo plano: la primera petición no espera a la nube si ya terminó.
	go func() {
		if _, err := dataSync.GetAppData(ctx); err != nil {
			log.Error().Err(err).Msg("carga inicial de datos")
		}
	}()

	chatManager := chat.NewManager(
		infraai.NewChatProvider(cfg.AI),
		chat.Config{Temperature: cfg.AI.Temperature, Timeout: cfg.AI.Timeout},
		log,
	)
	tarifaUC := usecase.NewTarifaUseCase(dataSync, infrapdf.NewMarotoTarifaPDF())
	authUC := auth.NewAuthUseCase(dataSync, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Consulta de Tarifas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := dataSync.Status()
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
			"source":  status.Source,
			"remote":  status.Remote,
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Sync:      dataSync,
		TarifaUC:  tarifaUC,
		Chat:      chatManager,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Esperar las subidas a la nube pendientes antes de cerrar los almacenes.
	if err := dataSync.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("subidas pendientes sin terminar")
	}
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar almacenes")
	}

	log.Info().Msg("aplicación detenida")
}
