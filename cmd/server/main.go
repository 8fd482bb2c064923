package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hls-vod2live/internal/platform/config"
	"hls-vod2live/internal/platform/logger"
	"hls-vod2live/internal/platform/metrics"
	"hls-vod2live/internal/vodtolive"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8000")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	assets := config.GetEnvList("ASSET_URIS", nil)
	sessionTTL := config.GetEnvDuration("SESSION_TTL", 10*time.Minute)

	log := logger.New(logLevel, logFormat)

	if len(assets) == 0 {
		log.Error("no assets configured, set ASSET_URIS to a comma-separated list of master manifest URIs")
		os.Exit(1)
	}

	catalog := vodtolive.NewStaticCatalog(assets)
	source := vodtolive.NewHTTPSource(nil)
	store := vodtolive.NewCacheStore(sessionTTL)
	met := metrics.New()
	h := vodtolive.NewHandler(store, catalog, source, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(store.Count()) }).ServeHTTP(w, r)
	})
	r.Get("/live/master.m3u8", h.MasterManifest)
	r.Get("/live/master{bandwidth:[0-9]+}.m3u8;session={token}", h.MediaManifest)
	r.Get("/live/master{bandwidth:[0-9]+}.m3u8", h.MediaManifest)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"assets", len(assets),
		"session_ttl", sessionTTL.String(),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
