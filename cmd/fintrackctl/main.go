// Command fintrackctl administers a fintrack database directly: it runs
// recurring processing, inspects and sets the budget, and exports expenses.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var (
	flagDBPath  string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:           "fintrackctl",
	Short:         "Administer a fintrack database",
	Long:          "Run recurring processing, inspect the monthly budget and export expenses without going through the API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor {
			disableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (default from SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failure("error:"), err)
		os.Exit(1)
	}
}

// session is the opened database and service graph for one command.
type session struct {
	*cli.App
	cfg   *config.Config
	close func()
}

// openSession wires the services for a command. Logs go to stderr at warn
// level unless LOG_LEVEL asks for more, so stdout stays clean for output.
func openSession() (*session, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		cfg.SQLiteDBPath = flagDBPath
	}

	level := slog.LevelWarn
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if l, err := log.ParseLevel(v); err == nil {
			level = l
		}
	}
	logger := log.New(log.Config{Level: level, Format: cfg.LogFormat, Component: log.ComponentCLI, Output: os.Stderr})
	log.SetDefault(logger)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.SQLiteDBPath, err)
	}
	publisher, closePublisher := cli.ConnectPublisher(logger, cfg)

	app, err := cli.NewApp(cfg, repo, publisher)
	if err != nil {
		closePublisher()
		repo.Close()
		return nil, err
	}
	return &session{
		App: app,
		cfg: cfg,
		close: func() {
			closePublisher()
			repo.Close()
		},
	}, nil
}

var now = time.Now
