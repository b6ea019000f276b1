package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/auth"
	authPostgres "github.com/mitrakatalog/catalog-management/internal/auth/postgres"
	"github.com/mitrakatalog/catalog-management/internal/cache"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	catalogPostgres "github.com/mitrakatalog/catalog-management/internal/catalog/postgres"
	"github.com/mitrakatalog/catalog-management/internal/core/events"
	"github.com/mitrakatalog/catalog-management/internal/moderation"
	"github.com/mitrakatalog/catalog-management/internal/packages"
	packagesPostgres "github.com/mitrakatalog/catalog-management/internal/packages/postgres"
	"github.com/mitrakatalog/catalog-management/internal/payment"
	paymentPostgres "github.com/mitrakatalog/catalog-management/internal/payment/postgres"
	"github.com/mitrakatalog/catalog-management/internal/transport"
	"github.com/mitrakatalog/catalog-management/internal/transport/rest"
	"github.com/mitrakatalog/catalog-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type dependencies struct {
	config      *internal.Config
	db          *sqlx.DB
	redisClient *redis.Client
	counters    *cache.Counters
	counterSink cache.CounterSink
	router      *chi.Mux
	logger      *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.config.Server.Port)
	deps.logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.router,
		ReadHeaderTimeout: deps.config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.config.Server.ReadTimeout,
		WriteTimeout:      deps.config.Server.WriteTimeout,
		IdleTimeout:       deps.config.Server.IdleTimeout,
	}

	flushCtx, stopFlush := context.WithCancel(context.Background())
	if deps.counters != nil {
		go runCounterFlush(flushCtx, deps.counters, deps.counterSink, deps.config.Redis.CounterFlushInterval, deps.logger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.logger.Info("received signal, shutting down", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.logger.Error("server shutdown error", "error", err)
		}

		stopFlush()
		if deps.counters != nil {
			// Drain buffered counters once more so bumps are not lost.
			if err := deps.counters.Flush(ctx, deps.counterSink); err != nil {
				deps.logger.Error("final counter flush failed", "error", err)
			}
			if err := deps.redisClient.Close(); err != nil {
				deps.logger.Error("redis close error", "error", err)
			}
		}

		if err := deps.db.Close(); err != nil {
			deps.logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopFlush()
		if err != nil && err != http.ErrServerClosed {
			deps.logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.logger.Info("server stopped")
}

func initializeDependencies() (*dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Environment)
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	events.RegisterAuditSubscriber(eventBus, lg)

	userRepo := authPostgres.NewUserRepository(gormDB)
	catalogRepo := catalogPostgres.NewCatalogRepository(gormDB)
	packageRepo := packagesPostgres.NewPackageRepository(gormDB)
	paymentRepo := paymentPostgres.NewPaymentRepository(gormDB)

	var (
		redisClient *redis.Client
		counters    *cache.Counters
		detailCache *cache.DetailCache
	)
	if config.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		counters = cache.NewCounters(redisClient, lg)
		detailCache = cache.NewDetailCache(redisClient, lg)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokenGen, lg)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRBAC(lg)

	packageService := packages.NewService(packageRepo, lg)
	packageHandler := packages.NewHandler(transport.NewBaseHandler(lg), packageService)

	var (
		counterAPI catalog.CounterAPI
		detailAPI  catalog.DetailCacheAPI
	)
	if counters != nil {
		counterAPI = counters
		detailAPI = detailCache
	} else {
		// Without redis, bumps go straight to the database.
		counterAPI = cache.NewDirectCounters(catalogRepo, lg)
	}

	catalogService := catalog.NewService(catalogRepo, packageService, counterAPI, detailAPI, config.Redis.DetailCacheTTL, lg)
	catalogHandler := catalog.NewHandler(catalogService, config.Publication.MaxPageSize)

	paymentService := payment.NewService(paymentRepo, catalogRepo, eventBus, lg)
	paymentHandler := payment.NewHandler(paymentService)

	moderationService := moderation.NewService(catalogRepo, eventBus, lg)
	moderationHandler := moderation.NewHandler(moderationService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, redisClient, rest.Handlers{
		Auth:       authHandler,
		Packages:   packageHandler,
		Catalog:    catalogHandler,
		Payment:    paymentHandler,
		Moderation: moderationHandler,
	}, rbac, config.Server.AllowedOrigins, lg)

	return &dependencies{
		config:      config,
		db:          db,
		redisClient: redisClient,
		counters:    counters,
		counterSink: catalogRepo,
		router:      router,
		logger:      lg,
	}, nil
}

func runCounterFlush(ctx context.Context, counters *cache.Counters, sink cache.CounterSink, interval time.Duration, lg *slog.Logger) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := counters.Flush(ctx, sink); err != nil {
				lg.Error("counter flush failed", "error", err)
			}
		}
	}
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
