package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/websession/internal/config"
	httpAdapter "github.com/aretw0/websession/pkg/adapters/http"
)

// ShutdownTimeout bounds the graceful shutdown of HTTP servers.
const ShutdownTimeout = 5 * time.Second

// RunServe runs the reference session endpoint until ctx is done.
// If ready is not nil, it receives the bound address once the server listens.
func RunServe(ctx context.Context, cfg config.Config, logger *slog.Logger, ready chan<- string) error {
	handler := httpAdapter.NewHandler(
		httpAdapter.WithTTL(cfg.Server.TTL),
		httpAdapter.WithCookieName(cfg.Server.CookieName),
		httpAdapter.WithLogger(logger),
	)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("session endpoint listening", "addr", ln.Addr().String(), "ttl", cfg.Server.TTL)
	if ready != nil {
		ready <- ln.Addr().String()
	}
	return serveUntilDone(ctx, srv, ln, logger)
}

// serveUntilDone serves on ln and shuts srv down gracefully once ctx is done.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down", "addr", ln.Addr().String())

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		return nil
	}
}
