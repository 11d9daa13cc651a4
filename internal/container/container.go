package container

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/go-trip-planner/app/cache"
	database "github.com/FACorreiaa/go-trip-planner/app/db"
	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/export"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/api/share"
	"github.com/FACorreiaa/go-trip-planner/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Cache  cache.Cache

	CatalogService   *catalog.ServiceImpl
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	ItineraryHandler *itinerary.Handler
	ShareHandler     *share.Handler
	ExportHandler    *export.Handler
	Authenticate     func(http.Handler) http.Handler
	AuthRateLimit    func(http.Handler) http.Handler
}

// NewContainer connects to Postgres and the cache backend and wires every service.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(ctx, dbConfig.ConnectionURL, cfg.Repositories.Postgres.MaxConns, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	c, err := cache.New(cfg, logger)
	if err != nil {
		pool.Close()
		logger.Error("Failed to initialize cache", slog.Any("error", err))
		return nil, err
	}

	ct := Build(cfg, pool, c, logger)
	ct.Pool = pool
	return ct, nil
}

// Build wires repositories, services and handlers over an existing database handle and cache.
func Build(cfg *config.Config, db database.DBTX, c cache.Cache, logger *slog.Logger) *Container {
	authRepo := auth.NewRepositoryImpl(db, logger)
	authService := auth.NewServiceImpl(authRepo, cfg, logger)

	catalogRepo := catalog.NewRepositoryImpl(db, logger)
	catalogService := catalog.NewServiceImpl(catalogRepo, c, logger)

	itineraryRepo := itinerary.NewRepositoryImpl(db, logger)
	itineraryService := itinerary.NewServiceImpl(itineraryRepo, catalogService, c, cfg.Planner.DefaultCity, logger)

	shareService := share.NewServiceImpl(itineraryRepo, cfg, logger)
	exportService := export.NewServiceImpl(itineraryService, shareService, share.EncodeQR, logger)

	limiter := appMiddleware.NewRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthBurst, 10*time.Minute)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Cache:            c,
		CatalogService:   catalogService,
		AuthHandler:      auth.NewHandler(authService, logger),
		CatalogHandler:   catalog.NewHandler(catalogService, logger),
		ItineraryHandler: itinerary.NewHandler(itineraryService, logger),
		ShareHandler:     share.NewHandler(shareService, logger),
		ExportHandler:    export.NewHandler(exportService, logger),
		Authenticate:     appMiddleware.Authenticate(authService.ParseToken, logger),
		AuthRateLimit:    limiter.Limit,
	}
}

// Router returns the API router over the container's handlers.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		AuthHandler:            c.AuthHandler,
		CatalogHandler:         c.CatalogHandler,
		ItineraryHandler:       c.ItineraryHandler,
		ShareHandler:           c.ShareHandler,
		ExportHandler:          c.ExportHandler,
		AuthenticateMiddleware: c.Authenticate,
		AuthRateLimit:          c.AuthRateLimit,
		AllowedOrigins:         c.Config.Server.CORSOrigins,
	})
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
