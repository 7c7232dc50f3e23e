package main

import (
	"context"
	"os"
	"time"

	"github.com/sobeldigital/importador-neogrid/internal/application/importer"
	"github.com/sobeldigital/importador-neogrid/internal/application/processor"
	"github.com/sobeldigital/importador-neogrid/internal/catalog"
	"github.com/sobeldigital/importador-neogrid/internal/infrastructure/neogrid"
	"github.com/sobeldigital/importador-neogrid/internal/infrastructure/postgres"
	"github.com/sobeldigital/importador-neogrid/pkg/config"
	"github.com/sobeldigital/importador-neogrid/pkg/logger"
)

// Corrida única del importador: busca los pedidos pendientes en Neogrid,
// los procesa contra el maestro de clientes y el catálogo de productos y los
// graba en el esquema Protheus. Pensado para correr bajo un scheduler.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Arquivo: cfg.Log.Arquivo,
	})
	log.Info().Str("env", cfg.App.Env).Str("app", cfg.App.Name).Msg("iniciando importador")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	pedidoRepo := postgres.NovoPedidoRepo(ctx, pool, log)
	clienteRepo := postgres.NovoClienteRepo(pool)
	resolver := catalog.NovoResolver(cfg.Catalogo.Path, log)

	itemProc := processor.NovoItemProcessor(resolver)
	pedidoProc := processor.NovoPedidoProcessor(clienteRepo, itemProc, log)
	fonte := neogrid.NewClient(cfg.Neogrid, log)

	svc := importer.NewService(fonte, pedidoProc, pedidoRepo, log)
	resumo, err := svc.Executar(ctx)
	if err != nil {
		log.Error().Err(err).Msg("corrida abortada")
		os.Exit(1)
	}

	for tipo, cant := range resumo.ErrosPorTipo {
		log.Info().Str("tipo", tipo).Int("cantidad", cant).Msg("desglose de errores")
	}
	if resumo.Erros > 0 {
		os.Exit(2)
	}
}
