package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/arozhkov/storefront/internal/backend"
	"github.com/arozhkov/storefront/pkg/logging"
	"github.com/arozhkov/storefront/pkg/metrics"
	"github.com/arozhkov/storefront/pkg/shutdown"
)

func main() {
	log := logging.New()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	httpAddr := env("HTTP_ADDR", ":8081")

	store := backend.NewStore(backend.SeedProducts())
	m := metrics.NewServerMetrics("api")
	handler := backend.NewHandler(log, store, m)

	srv := &http.Server{
		Addr:         httpAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("storefront-api shutdown complete")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
