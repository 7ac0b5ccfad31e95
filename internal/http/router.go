package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "advent-raffle-backend/docs"
	"advent-raffle-backend/internal/common/logger"
	"advent-raffle-backend/internal/common/middleware"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps wires the router.
type Deps struct {
	Raffle       RaffleService
	Winners      WinnerService
	Eligibility  EligibilityService
	Registration RegistrationService
	Mints        MintService
	Catalog      CatalogService

	Checks      []Check
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Log         *zerolog.Logger
	// Now is the evaluation clock; nil means time.Now.
	Now func() time.Time
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	log := logger.Component("http")
	if d.Log != nil {
		log = *d.Log
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(cors.New(corsConfig(d.CORSOrigins)))
	router.Use(middleware.ErrorHandler(log))

	h := &handlers{
		raffle:       d.Raffle,
		winners:      d.Winners,
		eligibility:  d.Eligibility,
		registration: d.Registration,
		mints:        d.Mints,
		catalog:      d.Catalog,
		now:          now,
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/raffle/run", middleware.BearerToken(), h.runRaffle)

		v1.POST("/winners/check", h.checkWinner)
		v1.GET("/winners/:wallet/doors/:door", h.getWinner)

		v1.POST("/eligibility", h.checkEligibility)

		v1.GET("/registrations/:wallet", h.getRegistration)
		v1.POST("/registrations", h.register)

		v1.GET("/doors/opened", h.openedDoors)
		v1.POST("/doors/:door/mint", h.mintDoor)
		v1.GET("/doors/:door/prizes", h.doorPrizes)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "advent-raffle-backend",
		})
	})
	router.GET("/ready", readiness(d.Checks))

	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	return cfg
}

func readiness(checks []Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				c.JSON(nethttp.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   check.Name + " unavailable",
					"details": err.Error(),
				})
				return
			}
		}
		c.JSON(nethttp.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "advent-raffle-backend",
		})
	}
}
