package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/techwork/portal-cli/internal/cli"
	"github.com/techwork/portal-cli/internal/config"
	"github.com/techwork/portal-cli/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.NewDefault(os.Stderr, slog.LevelWarn)

	app, err := cli.NewApp(cfg, log)
	if err != nil {
		log.Error(context.Background(), "failed to start", "error", err)
		os.Exit(1)
	}

	app.Run(context.Background())
}
