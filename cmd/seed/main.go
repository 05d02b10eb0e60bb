// seed carga el catálogo de ejemplo en PostgreSQL si aún no hay productos.
//
// Uso: go run ./cmd/seed [-uid <id de usuario>]
// Con -uid también crea una recepción, una entrega y un traslado de ejemplo para ese usuario.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/jhoicas/greengrocer-ims/internal/application/seed"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/documents"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/postgres"
	"github.com/jhoicas/greengrocer-ims/pkg/config"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

func main() {
	uid := flag.String("uid", "", "usuario dueño de los documentos de ejemplo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	store := postgres.NewDocumentStore(pool, nil)
	seeded, err := seed.NewSeeder(documents.NewUnitOfWork(store), log).SeedIfEmpty(ctx, *uid)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	if !seeded {
		log.Info().Msg("el catálogo ya tiene productos; no se sembró nada")
	}
}
