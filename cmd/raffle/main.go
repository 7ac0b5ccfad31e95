package main

import (
	"context"
	"os"

	"advent-raffle-backend/internal/app"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init("advent-raffle-cli", cfg.Debug)

	open := func(ctx context.Context, migrate bool) (*app.App, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		c := *cfg
		c.Storage.AutoMigrate = c.Storage.AutoMigrate || migrate
		return app.New(ctx, &c)
	}

	if err := newCLI(open, os.Stdout).Run(os.Args); err != nil {
		logger.Fatal().Err(err).Msg("Command failed")
	}
}
