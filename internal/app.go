// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "investpay/internal/api"
	"investpay/internal/api/handler"
	"investpay/internal/config"
	"investpay/internal/gateway/korapay"
	"investpay/internal/repository"
	"investpay/internal/repository/postgres"
	"investpay/internal/service"
	"investpay/internal/util"
	"investpay/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	InvestmentRepository   repository.InvestmentRepository
	ProfileRepository      repository.ProfileRepository
	PaymentEventRepository repository.PaymentEventRepository
	SessionRepository      repository.SessionRepository

	// Services
	InvestmentService service.InvestmentService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger (first, so config failures are loggable)
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.InvestmentRepository = postgres.NewInvestmentRepository(app.DB)
	app.ProfileRepository = postgres.NewProfileRepository(app.DB)
	app.PaymentEventRepository = postgres.NewPaymentEventRepository(app.DB)
	app.SessionRepository = postgres.NewSessionRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Gateway Client and Service
	gatewayClient := korapay.NewClient(app.Config.Korapay, app.Logger)
	app.InvestmentService = service.NewInvestmentService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor
		app.InvestmentRepository,
		app.ProfileRepository,
		app.PaymentEventRepository,
		gatewayClient,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	investmentHandler := handler.NewInvestmentHandler(app.InvestmentService, app.Logger)
	webhookHandler := handler.NewWebhookHandler(app.InvestmentService, app.Config.Korapay.SecretKey, app.Logger)
	app.HTTPHandler = router.NewRouter(investmentHandler, webhookHandler, app.DB, app.SessionRepository, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
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
