// Package app assembles repositories and services from configuration.
// Both the HTTP server and the operator CLI start from here.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	rcache "advent-raffle-backend/internal/cache/redis"
	"advent-raffle-backend/internal/common/cache"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/config"
	"advent-raffle-backend/internal/domain/calendar"
	apihttp "advent-raffle-backend/internal/http"
	"advent-raffle-backend/internal/platform/db"
	"advent-raffle-backend/internal/platform/metrics"
	"advent-raffle-backend/internal/platform/minter"
	rplatform "advent-raffle-backend/internal/platform/redis"
	"advent-raffle-backend/internal/repository/memory"
	pgrepo "advent-raffle-backend/internal/repository/postgres"
	"advent-raffle-backend/internal/repository/spreadsheet"
	"advent-raffle-backend/internal/service/catalog"
	"advent-raffle-backend/internal/service/eligibility"
	"advent-raffle-backend/internal/service/mint"
	"advent-raffle-backend/internal/service/raffle"
	"advent-raffle-backend/internal/service/registration"
	"advent-raffle-backend/internal/service/winner"
	"advent-raffle-backend/internal/utils/random"
	"advent-raffle-backend/internal/workers"
)

// App holds the wired dependency graph.
type App struct {
	Config   *config.Config
	Window   calendar.Window
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	DB    *sql.DB
	Redis *rplatform.Client

	Participants calendar.ParticipantRepository
	Prizes       calendar.PrizeRepository
	Winners      calendar.WinnerRepository
	Mints        calendar.MintRepository
	// WhitelistTable is the database allow-list, written by the CLI.
	WhitelistTable calendar.WhitelistRepository

	Raffle       *raffle.Service
	WinnerQuery  *winner.Service
	Eligibility  *eligibility.Service
	Registration *registration.Service
	MintLedger   *mint.Service
	Catalog      *catalog.Service

	// TriggerWorker is nil unless Redis is configured and RAFFLE_TRIGGER_STREAM is set.
	TriggerWorker *workers.RaffleTriggerWorker

	checks  []apihttp.Check
	closers []func() error
}

type tickets interface {
	eligibility.TicketStore
	registration.TicketConsumer
}

// New connects the configured backends and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	window, err := cfg.Window()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		Config:   cfg,
		Window:   window,
		Registry: reg,
		Metrics:  metrics.New(reg),
	}

	var (
		store    tickets
		locker   raffle.Locker
		regCache registration.Cache
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		mem := memory.New()
		a.Participants = mem.Participants()
		a.Prizes = mem.Prizes()
		a.Winners = mem.Winners()
		a.Mints = mem.Mints()
		a.WhitelistTable = mem.Whitelist()
		store = memory.NewTicketStore()
		logger.Warn().Msg("Using in-memory storage; state is lost on exit")

	case config.StorageDriverPostgres:
		if err := a.openPostgres(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		if err := a.openRedis(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		store = rcache.NewTicketStore(a.Redis)
		locker = rcache.NewAllocationLock(a.Redis)
		regCache = rcache.NewRegistrationCache(a.Redis, cfg.Eligibility.RegistrationCacheTTL)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	whitelist, err := a.whitelist()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	picker, err := random.NewSourceFromSeed(cfg.Raffle.Seed)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	mintClient := minter.WithTimeout(minter.NewDev(logger.Component("minter")), cfg.Minter.Timeout)

	raffleOpts := []raffle.Option{raffle.WithPicker(picker), raffle.WithMetrics(a.Metrics)}
	if locker != nil {
		raffleOpts = append(raffleOpts, raffle.WithLocker(locker, cfg.Raffle.LockTTL))
	}
	a.Raffle = raffle.NewService(a.Prizes, a.Winners, window, cfg.Raffle.SecretToken, raffleOpts...)

	a.WinnerQuery = winner.NewService(a.Participants, a.Winners, a.Prizes, window, winner.WithMetrics(a.Metrics))

	a.Eligibility = eligibility.NewService(whitelist, a.Participants, a.Mints, store,
		eligibility.WithTicketTTL(cfg.Eligibility.TicketTTL))

	regOpts := []registration.Option{registration.WithMetrics(a.Metrics)}
	if regCache != nil {
		regOpts = append(regOpts, registration.WithCache(regCache))
	}
	a.Registration = registration.NewService(a.Participants, whitelist, store, mintClient, regOpts...)

	a.MintLedger = mint.NewService(a.Participants, a.Mints, mintClient, window, mint.WithMetrics(a.Metrics))
	var catalogOpts []catalog.Option
	if a.Redis != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(cache.NewCacheService(a.Redis, "catalog:"), cfg.Redis.CatalogCacheTTL))
	}
	a.Catalog = catalog.NewService(a.Prizes, window, catalogOpts...)

	if a.Redis != nil && cfg.Raffle.TriggerStream != "" {
		consumer, err := os.Hostname()
		if err != nil || consumer == "" {
			consumer = "advent-raffle"
		}
		a.TriggerWorker = workers.NewRaffleTriggerWorker(a.Redis, cfg.Raffle.TriggerStream, consumer, a.Raffle, cfg.Raffle.SecretToken)
	}

	return a, nil
}

func (a *App) openPostgres(ctx context.Context) error {
	cfg := a.Config.Storage
	conn, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.DB = conn
	a.closers = append(a.closers, conn.Close)
	a.checks = append(a.checks, apihttp.Check{Name: "postgres", Ping: conn.PingContext})

	if cfg.AutoMigrate {
		if err := pgrepo.Migrate(ctx, conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("Database migrations applied")
	}

	opt := pgrepo.WithQueryTimeout(cfg.QueryTimeout)
	a.Participants = pgrepo.NewParticipantRepository(conn, opt)
	a.Prizes = pgrepo.NewPrizeRepository(conn, opt)
	a.Winners = pgrepo.NewWinnerRepository(conn, opt)
	a.Mints = pgrepo.NewMintRepository(conn, opt)
	a.WhitelistTable = pgrepo.NewWhitelistRepository(conn, opt)
	return nil
}

func (a *App) openRedis(ctx context.Context) error {
	cfg := a.Config.Redis
	client, err := rplatform.Open(ctx, rplatform.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	a.Redis = client
	a.closers = append(a.closers, client.Close)
	a.checks = append(a.checks, apihttp.Check{Name: "redis", Ping: client.Ping})
	return nil
}

func (a *App) whitelist() (eligibility.Whitelist, error) {
	if a.Config.Eligibility.WhitelistSource != config.WhitelistSourceCSV {
		return a.WhitelistTable, nil
	}
	wl, err := spreadsheet.Open(a.Config.Eligibility.WhitelistCSVPath)
	if err != nil {
		return nil, fmt.Errorf("load whitelist: %w", err)
	}
	logger.Info().Int("wallets", wl.Len()).Str("path", a.Config.Eligibility.WhitelistCSVPath).Msg("Whitelist loaded")
	return wl, nil
}

// Router returns the HTTP API over the app's services.
func (a *App) Router() *gin.Engine {
	return apihttp.NewRouter(apihttp.Deps{
		Raffle:       a.Raffle,
		Winners:      a.WinnerQuery,
		Eligibility:  a.Eligibility,
		Registration: a.Registration,
		Mints:        a.MintLedger,
		Catalog:      a.Catalog,
		Checks:       a.checks,
		Gatherer:     a.Registry,
		CORSOrigins:  a.Config.HTTP.CORSAllowedOrigins,
	})
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
