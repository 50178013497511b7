// Package cli provides common initialization for the fintrack binaries:
// environment, configuration, logging, storage and the service graph.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads and validates the configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the structured logger described by cfg and installs it
// as the slog default, so package-level slog calls share its handler.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", log.FieldError, err)
	}
	return logger
}

// MustStart performs the common startup sequence and exits on failure.
func MustStart(component string) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := SetupLogger(cfg, component)
	logger.Info("Starting "+component, log.FieldOperation, log.OpStartup)
	return cfg, logger
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// ConnectPublisher dials the broker when AMQP is configured. A failed dial
// leaves the caller in SQLite-only mode; the sync worker's pending scan
// catches up once the broker is reachable. close is never nil.
func ConnectPublisher(logger *log.Logger, cfg *config.Config) (services.Publisher, func()) {
	noop := func() {}
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - expenses will not be mirrored")
		return nil, noop
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", log.FieldError, err)
		return nil, noop
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	}
}

// App is the wired service graph shared by the binaries.
type App struct {
	Repo       *storage.SQLiteRepository
	Expenses   *services.ExpenseService
	Categories *services.CategoryService
	Recurring  *services.RecurringService
	Processor  *services.RecurringProcessor
	Budget     *services.BudgetService
}

// NewApp wires the services over repo. publisher may be nil.
func NewApp(cfg *config.Config, repo *storage.SQLiteRepository, publisher services.Publisher) (*App, error) {
	policy, err := services.ParseReactivationPolicy(cfg.ReactivationPolicy)
	if err != nil {
		return nil, err
	}

	expenses := services.NewExpenseService(repo, repo, publisher, cfg.SummaryCacheTTL)
	budget := services.NewBudgetService(repo, expenses, cfg.SummaryCacheTTL)
	expenses.OnChange(budget.Invalidate)

	return &App{
		Repo:       repo,
		Expenses:   expenses,
		Categories: services.NewCategoryService(repo),
		Recurring:  services.NewRecurringService(repo, repo, policy),
		Processor:  services.NewRecurringProcessor(repo, expenses),
		Budget:     budget,
	}, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown requested", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, stop
}
