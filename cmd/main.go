package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confspace/conference-service/config"
	"github.com/confspace/conference-service/internal/reaper"
	"github.com/confspace/conference-service/internal/registry"
	"github.com/confspace/conference-service/internal/store"
	httpx "github.com/confspace/conference-service/internal/transport/http"
	"github.com/confspace/conference-service/internal/transport/ws"
	"github.com/confspace/conference-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting conference-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- shared room store ---
	ctx := context.Background()
	var st store.RoomStore
	switch cfg.Store.Backend {
	case "memory":
		st = store.NewMemoryStore(cfg.Store.TTLDuration())
		slog.Warn("using in-memory room store; rooms will not survive a restart")
	default:
		st, err = store.NewRedisStore(ctx, cfg.Store.RedisURL, cfg.Store.TTLDuration())
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
	}
	defer st.Close()

	// --- registry ---
	reg := registry.New(st, cfg.Store.OpTimeoutDuration())
	if err := reg.Rehydrate(ctx); err != nil {
		// not fatal: the service starts empty and the store stays a mirror
		slog.Warn("rehydrate from store failed", "err", err)
	}

	// --- realtime gateway ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, reg)

	// --- HTTP ---
	handler := httpx.NewHandler(reg, hub)
	router := httpx.NewRouter(handler, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- stale-room reaper ---
	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	rp := reaper.New(reg, st, cfg.Rooms.SweepIntervalDuration(), cfg.Rooms.StaleThresholdDuration())
	go rp.Run(reaperCtx)

	// --- run ---
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("http server failed", "err", err)
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	stopReaper()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	slog.Info("stopped")
}
