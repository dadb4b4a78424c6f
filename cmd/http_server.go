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
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/audit"
	auditPostgres "github.com/nattapongw/banchee/internal/audit/postgres"
	"github.com/nattapongw/banchee/internal/auth"
	authPostgres "github.com/nattapongw/banchee/internal/auth/postgres"
	"github.com/nattapongw/banchee/internal/core/events"
	"github.com/nattapongw/banchee/internal/notification"
	"github.com/nattapongw/banchee/internal/reimbursement"
	reimbursementPostgres "github.com/nattapongw/banchee/internal/reimbursement/postgres"
	"github.com/nattapongw/banchee/internal/transaction"
	transactionPostgres "github.com/nattapongw/banchee/internal/transaction/postgres"
	"github.com/nattapongw/banchee/internal/transport/rest"
	"github.com/nattapongw/banchee/internal/transport/swagger"
	"github.com/nattapongw/banchee/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config               *internal.Config
	DB                   *sqlx.DB
	Router               *chi.Mux
	Logger               *slog.Logger
	AuthHandler          *auth.Handler
	TransactionHandler   *transaction.Handler
	ReimbursementHandler *reimbursement.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.Config,
		deps.AuthHandler,
		deps.TransactionHandler,
		deps.ReimbursementHandler,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	log := logger.LoggerWrapper()

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, fmt.Errorf("openapi spec check failed: %w", err)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(log)

	auditRecorder := audit.NewRecorder(auditPostgres.NewAuditRepository(gormDB), log)
	audit.RegisterSubscribers(bus, auditRecorder)

	if cfg.Notification.Enabled {
		dispatcher := notification.FromConfig(cfg.Notification, log)
		notification.RegisterSubscribers(bus, dispatcher, log)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, cfg.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	threshold, err := approvalThreshold(cfg.Approval)
	if err != nil {
		return nil, err
	}

	transactionService := transaction.NewService(
		transactionPostgres.NewTransactionRepository(gormDB),
		transactionPostgres.NewPaymentRepository(gormDB),
		bus,
		log,
		threshold,
	)
	transactionHandler := transaction.NewHandler(transactionService)

	reimbursementService := reimbursement.NewService(
		reimbursementPostgres.NewReimbursementRepository(gormDB),
		transactionService,
		bus,
		log,
	)
	reimbursementHandler := reimbursement.NewHandler(reimbursementService)

	return &Dependencies{
		Config:               cfg,
		DB:                   db,
		Router:               chi.NewRouter(),
		Logger:               log,
		AuthHandler:          authHandler,
		TransactionHandler:   transactionHandler,
		ReimbursementHandler: reimbursementHandler,
	}, nil
}

func approvalThreshold(cfg internal.ApprovalConfig) (decimal.Decimal, error) {
	if cfg.ThresholdAmount == "" {
		return decimal.NewFromInt(50000), nil
	}
	threshold, err := decimal.NewFromString(cfg.ThresholdAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid approval threshold %q: %w", cfg.ThresholdAmount, err)
	}
	return threshold, nil
}

// initDB initializes the database connection
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

// initGorm wraps the already-open pgx connection so the repositories
// share one pool with the health check. Error translation turns
// unique-constraint violations into gorm.ErrDuplicatedKey, which the
// payment repository depends on.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{TranslateError: true})
}
