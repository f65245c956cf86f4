// Package cli provides the initialization shared by the budget subcommands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/state"
	"budget/internal/state/memory"
	"budget/internal/state/sqlite"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger for level and installs it as the
// slog default.
func SetupLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCategories returns the configured category list or the built-in one.
func LoadCategories(cfg *config.Config) (core.Categories, error) {
	if cfg.CategoriesFile == "" {
		return core.DefaultCategories(), nil
	}
	return core.LoadCategories(cfg.CategoriesFile)
}

// NewStore builds the state container selected by cfg.StateBackend.
func NewStore(ctx context.Context, cfg *config.Config) (state.Store, error) {
	switch cfg.StateBackend {
	case config.BackendSQLite:
		s, err := sqlite.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		return s, nil
	case config.BackendMemory, "":
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
}

// DispatchLogger returns an observer that logs every committed action with
// the resulting totals.
func DispatchLogger(logger *log.Logger) state.Observer {
	sl := log.NewStructuredLogger(logger)
	return func(ctx context.Context, a state.Action, s state.State) {
		sl.LogDispatch(ctx, string(a.Type), a.ExpenseID(), s.Budget, s.RemainingBudget(), len(s.Expenses))
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
