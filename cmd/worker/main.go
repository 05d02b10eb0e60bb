// worker procesa las tareas en segundo plano (correo de reseteo de contraseña).
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/jobs"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/mail"
	"github.com/jhoicas/greengrocer-ims/pkg/config"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log.Named("worker"),
		Sender:      mail.NewSMTPSender(cfg.SMTP),
	})

	log.Info().
		Str("redis", cfg.Redis.Addr).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("worker iniciado")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
