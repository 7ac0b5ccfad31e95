package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"advent-raffle-backend/internal/app"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/config"
)

// @title           Advent Raffle API
// @version         1.0
// @description     Advent calendar NFT raffle: registration, daily door mints and prize allocation.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Raffle trigger secret as "Bearer <token>"

// @tag.name raffle
// @tag.description Daily prize allocation

// @tag.name winners
// @tag.description Winner lookups

// @tag.name registrations
// @tag.description Eligibility and registration

// @tag.name doors
// @tag.description Door mints and prize catalog

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init("advent-raffle-backend", cfg.Debug)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close connections")
		}
	}()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      a.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.HTTP.Addr).
			Str("storage", cfg.Storage.Driver).
			Str("whitelist", cfg.Eligibility.WhitelistSource).
			Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if a.TriggerWorker != nil {
		g.Go(func() error {
			// The API stays up without the consumer.
			if err := a.TriggerWorker.Start(gctx); err != nil {
				logger.Error().Err(err).Msg("Raffle trigger worker stopped")
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		return
	}
	logger.Info().Msg("Server exited")
}
