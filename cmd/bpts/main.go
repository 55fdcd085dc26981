package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/codesidh/bpts/adapter/cli"
	"github.com/codesidh/bpts/internal/app"
	"github.com/codesidh/bpts/pkg/config"
	"github.com/codesidh/bpts/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}
	cli.SetLogger(logger)

	// CLI commands run against the local database without broker or
	// distributed locks.
	container, err := app.NewContainer(ctx, cfg, logger, app.Options{Local: true, SkipBroker: true})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.SetApp(&cli.App{Prioritization: container.Prioritization})
	cli.Execute(ctx)
}
