package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/seowatch/internal/client/cli"
	"github.com/dmitrijs2005/seowatch/internal/client/config"
	"github.com/dmitrijs2005/seowatch/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(logging.Options{
		Backend: cfg.LogBackend,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	rt, err := cli.NewRuntime(ctx, cfg, logger, nil, nil)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error(context.Background(), "shutdown", "error", err)
		}
	}()

	if err := rt.Run(ctx); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
	}
}
