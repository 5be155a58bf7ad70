package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/myvocab-backend/internal/audio"
	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/service/history"
	"github.com/heartmarshall/myvocab-backend/internal/service/session"
	"github.com/heartmarshall/myvocab-backend/internal/transport/middleware"
	"github.com/heartmarshall/myvocab-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// storage, AI and transport layers, serves HTTP until ctx is cancelled or a
// termination signal arrives, then shuts everything down in dependency order.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("ai_provider", cfg.AI.Provider),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := rest.NewHealthHandler(BuildVersion())

	// Storage.
	store, closeStore, err := openResultStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	if store.ping != nil {
		health.WithComponent("postgres", store.ping)
	}

	rdb := openRedis(cfg.Redis)
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck
		health.WithComponent("redis", rest.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	// AI gateway.
	gw, err := NewGateway(cfg, rdb, logger)
	if err != nil {
		return err
	}
	defer gw.Wait()

	// Pronunciation pre-warm.
	warm, stopWarm, err := newPrewarmer(cfg, gw, logger)
	if err != nil {
		return err
	}
	defer stopWarm()

	// Sessions and history.
	sessions := session.NewManager(logger, gw, store.repo, warm, cfg.Session)
	defer sessions.Stop()
	hist := history.NewService(logger, store.repo)

	// Transport.
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		defer limiter.Stop()
	}

	router := rest.NewRouter(rest.Handlers{
		Health:        health,
		Sessions:      rest.NewSessionHandler(sessions, logger),
		Results:       rest.NewResultsHandler(hist, logger),
		Pronunciation: rest.NewPronunciationHandler(gw, audio.Shared(), cfg.Audio.StreamQueue, logger),
	}, *cfg, limiter, logger)

	return serve(ctx, cfg.Server, router, logger)
}

// serve runs the HTTP server until ctx is done. Request contexts derive from
// a base context that is cancelled on shutdown so that audio streams end.
func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) error {
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	srv.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
