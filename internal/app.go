// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "credikhaata-ledger/internal/api"
	"credikhaata-ledger/internal/api/handler"
	"credikhaata-ledger/internal/config"
	"credikhaata-ledger/internal/kv"
	"credikhaata-ledger/internal/kv/sqlkv"
	"credikhaata-ledger/internal/notify"
	"credikhaata-ledger/internal/service"
	"credikhaata-ledger/internal/util"
	"credikhaata-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB // nil unless a SQL storage driver is configured

	// Collaborators
	Store    kv.Store
	Notifier notify.Notifier

	// Engine
	Ledger service.LedgerService
	View   *service.View

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Initialize the durable key-value store
	store, err := app.newStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage driver %q: %w", cfg.StorageDriver, err)
	}
	app.Store = store
	app.Logger.Info("Durable store initialized.", "driver", cfg.StorageDriver)

	// 4. Initialize the notification collaborator
	app.Notifier = notify.NewSlogNotifier(app.Logger)

	// 5. Initialize the ledger engine and its aggregation view
	app.Ledger = service.NewLedgerService(app.Store, app.Notifier, app.Logger)
	app.View = service.NewView(app.Ledger, nil)
	app.Logger.Info("Ledger engine initialized.")

	// 6. Initialize HTTP Handlers and Router
	ledgerHandler := handler.NewLedgerHandler(app.Ledger, app.View, app.Logger)
	app.HTTPHandler = router.NewRouter(ledgerHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) newStore(cfg *config.AppConfig) (kv.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return kv.NewMemory(), nil
	case config.DriverFile:
		return kv.NewFile(cfg.DataDir)
	case config.DriverSQLite:
		database, err := db.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		app.DB = database
		return sqlkv.New(database)
	case config.DriverPostgres:
		database, err := db.NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		app.DB = database
		return sqlkv.New(database)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
