package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grimm.is/sincelast/internal/api"
	"grimm.is/sincelast/internal/config"
	"grimm.is/sincelast/internal/counter"
	"grimm.is/sincelast/internal/i18n"
	"grimm.is/sincelast/internal/logging"
	"grimm.is/sincelast/internal/state"
)

// RunServe starts the counter server and blocks until SIGINT or
// SIGTERM. listen and statePath, when non-empty, override the
// configured values.
func RunServe(configFile, listen, statePath string) error {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.LoadFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if statePath != "" {
		cfg.StatePath = statePath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	tick, err := cfg.Tick()
	if err != nil {
		return err
	}
	if cfg.Language != "" {
		i18n.DefaultLang = i18n.ParseLang(cfg.Language)
	}

	logger := logging.New(logging.Config{
		Level: logging.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	logging.SetDefault(logger)

	st, err := state.NewSQLiteStore(state.DefaultOptions(cfg.StatePath))
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer st.Close()

	cs, err := counter.NewStore(st, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(ctx, api.ServerOptions{
		Counter: cs,
		State:   st,
		Logger:  logger,
		Tick:    tick,
	})
	httpServer := server.NewHTTPServer(cfg.Listen, nil)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Listen, "state", cfg.StatePath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
