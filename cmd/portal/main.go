package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lirancohen/portal/internal/api"
	"github.com/lirancohen/portal/internal/api/core"
	"github.com/lirancohen/portal/internal/auth"
	"github.com/lirancohen/portal/internal/bridge"
	"github.com/lirancohen/portal/internal/config"
	"github.com/lirancohen/portal/internal/db"
	"github.com/lirancohen/portal/internal/eventlog"
	"github.com/lirancohen/portal/internal/logging"
	"github.com/lirancohen/portal/internal/realtime"
	"github.com/lirancohen/portal/internal/router"
	"github.com/lirancohen/portal/internal/session"
	"github.com/lirancohen/portal/internal/storage"
)

const version = "0.1.0-dev"

// cookieLifetime bounds both the storage cookies and the tokens inside them.
const cookieLifetime = 30 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("portal v%s\n", version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)
	logger.Info("starting portal", "version", version, "storage", cfg.Storage)
	for _, s := range cfg.Status() {
		logger.Debug("config", "feature", s.Name, "configured", s.Configured)
	}

	// Initialize database
	logger.Info("opening database", "path", cfg.DB)
	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = database.Close() }()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	provider, err := newStorageProvider(cfg, database, logger)
	if err != nil {
		return err
	}

	routes := router.DefaultTable()
	if err := routes.Validate(); err != nil {
		return fmt.Errorf("route table: %w", err)
	}

	gate := session.NewGate(newValidator(cfg), logger)

	registry := realtime.NewRegistry(logger)
	bus := bridge.NewBus(logger)
	b := bridge.New(registry.Lookup, bus, logger)

	node, err := realtime.NewNode(realtime.Config{Logger: logger}, registry, bus)
	if err != nil {
		return err
	}
	if err := node.Run(); err != nil {
		return fmt.Errorf("starting realtime node: %w", err)
	}

	recorder := eventlog.New(database, b, eventlog.Config{
		Events: cfg.Runtime.Events,
		Keep:   cfg.Runtime.EventKeep,
	}, logger)
	recorder.Start()
	defer recorder.Stop()

	server, err := api.NewServer(&core.Deps{
		DB:          database,
		Gate:        gate,
		Storage:     provider,
		Routes:      routes,
		Bridge:      b,
		Events:      recorder,
		Realtime:    node,
		Broadcaster: node.Broadcaster(),
		Runtime:     cfg.Runtime,
		Logger:      logger,
		Version:     version,
	}, api.Config{
		Addr:     cfg.Addr,
		CertFile: cfg.CertFile,
		KeyFile:  cfg.KeyFile,
	})
	if err != nil {
		return err
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	// Graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := node.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down realtime node: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

func newStorageProvider(cfg *config.Config, database *db.DB, logger *slog.Logger) (storage.Provider, error) {
	switch cfg.Storage {
	case storage.BackendCookie:
		if cfg.SigningSeed == "" {
			logger.Warn("no signing seed configured, logins will not survive a restart")
		}
		tokens, err := auth.NewTokenConfig("portal", cfg.SigningSeed, cookieLifetime)
		if err != nil {
			return nil, fmt.Errorf("creating token config: %w", err)
		}
		return storage.NewCookieProvider(storage.CookieConfig{
			Tokens: tokens,
			MaxAge: cookieLifetime,
			Secure: cfg.SecureCookies,
		}), nil
	case storage.BackendSQLite:
		return storage.NewSQLiteProvider(database, cfg.SecureCookies, logger), nil
	case storage.BackendMemory:
		return storage.NewMemoryProvider(cfg.SecureCookies), nil
	default:
		return nil, storage.ValidateBackend(cfg.Storage)
	}
}

func newValidator(cfg *config.Config) session.Validator {
	if cfg.PasswordHash != "" {
		return session.BcryptValidator{
			Username:     cfg.Username,
			PasswordHash: []byte(cfg.PasswordHash),
		}
	}
	return session.StaticValidator{
		Username: cfg.Username,
		Password: cfg.Password,
	}
}
