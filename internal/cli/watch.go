package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/websession"
	"github.com/aretw0/websession/internal/config"
	"github.com/aretw0/websession/internal/presentation/tui"
	"github.com/aretw0/websession/pkg/adapters/redis"
	"github.com/aretw0/websession/pkg/domain"
	"github.com/aretw0/websession/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunWatch polls the session endpoint every cfg.PollInterval until ctx is done,
// printing change and expire events.
func RunWatch(ctx context.Context, cfg config.Config, logger *slog.Logger, printer *tui.EventPrinter) error {
	hooks := debugHooks(logger)

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		hooks = observability.Merge(hooks, metrics.Hooks())

		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.MetricsAddr, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		logger.Info("metrics available", "addr", ln.Addr().String())
		go func() {
			if err := serveUntilDone(ctx, srv, ln, logger); err != nil {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	opts := []websession.Option{
		// Endpoint is the full resource URL.
		websession.WithPath(""),
		websession.WithTimeout(cfg.Timeout),
		websession.WithLifecycleHooks(hooks),
		websession.WithLogger(logger),
	}
	if cfg.Redis.URL != "" {
		channel, err := redis.NewFromURL(cfg.Redis.URL, cfg.Redis.Prefix, redis.WithLogger(logger))
		if err != nil {
			return err
		}
		// Deferred before the session's Close, so it runs after the unsubscribe.
		defer func() {
			if err := channel.Close(); err != nil {
				logger.Warn("failed to close redis channel", "err", err)
			}
		}()
		opts = append(opts, websession.WithChannel(channel))
		logger.Info("sharing expiry over redis", "prefix", cfg.Redis.Prefix)
	}

	sess, err := websession.New(cfg.Endpoint, opts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := sess.OnChange(func(ctx context.Context, e *domain.ChangeEvent) error {
		printer.Change(e)
		return nil
	}); err != nil {
		return err
	}
	if _, err := sess.OnExpire(func(ctx context.Context, e *domain.ExpireEvent) error {
		printer.Expire(e)
		return nil
	}); err != nil {
		return err
	}

	logger.Info("watching session", "endpoint", cfg.Endpoint, "interval", cfg.PollInterval)
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := sess.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			printer.Error(err)
			logger.Warn("refresh failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFetch: func(ctx context.Context, e *domain.FetchEvent) {
			if e.Err != nil {
				logger.Debug("Fetch (Error)", "method", e.Method, "duration", e.Duration, "err", e.Err)
			} else {
				logger.Debug("Fetch", "method", e.Method, "duration", e.Duration)
			}
		},
		OnChange: func(ctx context.Context, e *domain.ChangeEvent) {
			logger.Debug("Session Changed", "ended", e.Ended, "keys", domain.ChangedKeys(e.OldData, e.NewData))
		},
		OnExpire: func(ctx context.Context, e *domain.ExpireEvent) {
			logger.Debug("Session Expired", "session_key", e.Key)
		},
		OnRecover: func(ctx context.Context, err error) {
			logger.Debug("Session Recovered", "err", err)
		},
	}
}
