package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sobeldigital/importador-neogrid/internal/infrastructure/postgres"
	httpRouter "github.com/sobeldigital/importador-neogrid/internal/interfaces/http"
	"github.com/sobeldigital/importador-neogrid/pkg/config"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// API de consultas de solo lectura sobre los pedidos importados, para los
// operadores del proceso de integración.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().Str("env", cfg.App.Env).Str("app", cfg.App.Name).Msg("iniciando API de consultas")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	pedidoRepo := postgres.NovoPedidoRepo(ctx, pool, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	httpRouter.SetupRoutes(app, httpRouter.NewPedidoHandler(pedidoRepo, log))

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Fatal().Err(err).Msg("servidor HTTP")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}
