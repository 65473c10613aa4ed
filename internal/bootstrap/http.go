package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guildgate/guildgate/config"
)

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg config.HTTPConfig, handler http.Handler, logger *slog.Logger) *http.Server {
	addr := cfg.Addr()
	if addr == ":" || addr == ":0" {
		addr = ":3000"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// Run connects the bot, serves HTTP and blocks until SIGINT/SIGTERM or a
// startup failure, then shuts both down.
func Run(ctx context.Context, cfg *config.AppConfig, services *ServiceContainer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.Bot.Open(); err != nil {
		return err
	}

	server := StartHTTPServer(cfg.HTTP, services.Handler, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	g, shutdownCtx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		timeoutCtx, cancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := services.Bot.Close(); err != nil {
			return fmt.Errorf("close discord session: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
