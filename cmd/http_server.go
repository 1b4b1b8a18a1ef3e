package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/goal-tracker/api"
	"github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/auth"
	"github.com/frahmantamala/goal-tracker/internal/core/events"
	"github.com/frahmantamala/goal-tracker/internal/goal"
	goalPostgres "github.com/frahmantamala/goal-tracker/internal/goal/postgres"
	"github.com/frahmantamala/goal-tracker/internal/reserve"
	reservePostgres "github.com/frahmantamala/goal-tracker/internal/reserve/postgres"
	"github.com/frahmantamala/goal-tracker/internal/sweep"
	transactionPostgres "github.com/frahmantamala/goal-tracker/internal/transaction/postgres"
	"github.com/frahmantamala/goal-tracker/internal/transport"
	"github.com/frahmantamala/goal-tracker/internal/transport/rest"
	"github.com/frahmantamala/goal-tracker/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var withSweep bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&withSweep, "sweep", false, "Also run the goal sweep inside the server process")
}

type Dependencies struct {
	Config         *internal.Config
	GormDB         *gorm.DB
	SQLXDB         *sqlx.DB
	EventBus       *events.EventBus
	GoalService    *goal.Service
	ReserveService *reserve.Service
	Logger         *slog.Logger
}

func (d *Dependencies) Close(ctx context.Context) {
	if err := d.EventBus.Drain(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if sqlDB, err := d.GormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			d.Logger.Error("database close error", "error", err)
		}
	}
	if err := d.SQLXDB.Close(); err != nil {
		d.Logger.Error("transaction feed close error", "error", err)
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	if _, err := api.Load(context.Background()); err != nil {
		log.Error("invalid openapi document", "error", err)
		os.Exit(1)
	}

	sqlDB, err := deps.GormDB.DB()
	if err != nil {
		log.Error("failed to access database handle", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewJWTTokenGenerator(deps.Config.Security.JWTSecret, deps.Config.Security.AccessTokenDuration)
	baseHandler := transport.NewBaseHandler(log)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB,
		goal.NewHandler(baseHandler, deps.GoalService),
		reserve.NewHandler(baseHandler, deps.ReserveService),
		tokens, log)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	var pool *sweep.Pool
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if withSweep {
		pool = newSweepPool(deps.Config.Worker, deps.GoalService, log)
		go pool.Run(sweepCtx, func() time.Time { return time.Now().UTC() })
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", addr, "sweep", withSweep)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "error", err)
	}
	if pool != nil {
		stopSweep()
		pool.Shutdown()
	}
	deps.Close(ctx)

	log.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(config.Logging.Level, config.Logging.Format)

	gormDB, err := initGormDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlxDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transaction feed: %w", err)
	}

	bus := events.NewEventBus(log)
	bus.Subscribe(events.AllEvents, events.AuditLogger(log))

	goalRepo := goalPostgres.NewGoalRepository(gormDB)
	reserveService := reserve.NewService(reservePostgres.NewReserveRepository(gormDB), goalRepo, log)
	goalService := goal.NewService(goalRepo, transactionPostgres.NewTransactionFeed(sqlxDB), reserveService, bus, log)

	return &Dependencies{
		Config:         config,
		GormDB:         gormDB,
		SQLXDB:         sqlxDB,
		EventBus:       bus,
		GoalService:    goalService,
		ReserveService: reserveService,
		Logger:         log,
	}, nil
}

// initGormDB opens the goal store.
func initGormDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// initDB opens the read-only connection used by the transaction feed.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return dbConn, nil
}
