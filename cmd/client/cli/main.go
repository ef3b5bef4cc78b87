package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/matchpoint-app/matchpoint/internal/client/cli"
	"github.com/matchpoint-app/matchpoint/internal/client/config"
	"github.com/matchpoint-app/matchpoint/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
