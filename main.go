package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stevemurr/scfiles-backend/catalog"
	"github.com/stevemurr/scfiles-backend/config"
	"github.com/stevemurr/scfiles-backend/handler"
	"github.com/stevemurr/scfiles-backend/keepalive"
	"github.com/stevemurr/scfiles-backend/lock"
	"github.com/stevemurr/scfiles-backend/logging"
	"github.com/stevemurr/scfiles-backend/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "scfiles:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	s, err := store.New(cfg.Backend, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create store (backend=%s): %w", cfg.Backend, err)
	}
	defer s.Close()

	locks, err := lock.New(cfg.Backend, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create slot locks: %w", err)
	}

	h := handler.New(catalog.New(s, locks, logger), logger)
	wrapped := handler.Chain(h,
		handler.WithRequestID,
		handler.Logging(logger),
		handler.Recover(logger),
		handler.RateLimit(cfg.RateLimit, cfg.RateBurst),
		handler.CORS(cfg.AllowedOrigins),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("SC Files Backend starting", "addr", cfg.Addr(), "store", cfg.Backend, "data", cfg.DataDir)
		serveErr <- srv.ListenAndServe()
	}()

	var pinger *keepalive.Pinger
	if cfg.KeepAliveURL != "" {
		pinger = keepalive.New(cfg.KeepAliveURL, logger)
		if err := pinger.Start(cfg.KeepAliveInterval); err != nil {
			return fmt.Errorf("failed to start keep-alive: %w", err)
		}
	} else {
		logger.Warn("BASE_URL not set, keep-alive disabled")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	if pinger != nil {
		if err := pinger.Stop(); err != nil {
			logger.Error("keep-alive stop failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
