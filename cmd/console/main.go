package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/restaurant-console/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := bootstrap.LoadConfig(args)
	if err != nil {
		return err
	}
	logger := bootstrap.InitLogger(cfg.Observability.Logging)
	return bootstrap.Run(ctx, &cfg, logger)
}
