package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start serves HTTP in the background. The returned channel is closed once a
// termination signal arrives.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening",
			"address", a.httpServer.Addr,
			"database", a.config.GetString("database.driver"),
			"retention", a.config.GetInt("modules.equipment.retention"),
		)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		sig := <-sigint
		slog.Info("termination signal received", "signal", sig.String())

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)
	}()

	return terminateChan
}

// Stop releases resources in registration order: the HTTP server drains
// in-flight uploads before the database is closed.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	for _, c := range a.closers {
		if err := c.close(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", c.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
