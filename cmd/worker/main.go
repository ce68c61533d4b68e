package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/BillIndex/internal/api"
	"github.com/dharsanguruparan/BillIndex/internal/app"
	"github.com/dharsanguruparan/BillIndex/internal/config"
	"github.com/dharsanguruparan/BillIndex/internal/queue"
	"github.com/dharsanguruparan/BillIndex/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "worker: load config: %v\n", err)
		os.Exit(1)
	}
	log := app.NewLogger(cfg)

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open dependencies")
	}
	defer a.Close()

	// The pipeline processes one bill at a time.
	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency:     1,
		Queues:          map[string]int{queue.Queue: 1},
		Logger:          worker.NewLogger(log),
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	processor := worker.NewProcessor(a.Runner, log)
	mux := processor.Handler()

	admin := api.New(cfg.AdminAddress, cfg.ShutdownTimeout, a.Store, a.Metrics.Registry, log)
	go func() {
		if err := admin.Run(ctx); err != nil {
			log.Error().Err(err).Msg("admin api stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Run(mux); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}
