//	@title			File Upload API
//	@version		1.0
//	@description	Upload a file and get a shareable link backed by an S3-compatible media store.
//
//	@host		localhost:8080
//	@BasePath	/api

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fileupload/service/internal/config"
	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.IsProduction())
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}

	provider, err := storage.New(ctx, cfg.Storage(), log)
	if err != nil {
		log.Error(ctx, "object storage init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, log, provider),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info(ctx, "server listening", "port", cfg.Port, "env", cfg.AppEnv, "driver", cfg.StorageDriver)
		log.Info(ctx, "swagger UI at http://localhost:"+cfg.Port+"/swagger/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	log.Info(ctx, "shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info(ctx, "server stopped")
}
