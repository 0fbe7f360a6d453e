package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/fileupload/service/internal/config"
	"github.com/fileupload/service/internal/files"
	"github.com/fileupload/service/internal/filetoken"
	"github.com/fileupload/service/internal/logging"
	appMiddleware "github.com/fileupload/service/internal/middleware"
	"github.com/fileupload/service/internal/storage"
	"github.com/fileupload/service/internal/upload"

	_ "github.com/fileupload/service/docs/swagger"
)

// newRouter wires handlers onto a chi router.
func newRouter(cfg *config.Config, log logging.Logger, provider storage.Provider) http.Handler {
	tokens := filetoken.NewIssuer(cfg.FileTokenSecret, cfg.FileTokenTTL)

	uploadHandler := upload.NewHandler(provider, tokens, log, upload.Options{
		MaxSize:    cfg.UploadMaxBytes,
		TmpDir:     cfg.UploadTmpDir,
		Production: cfg.IsProduction(),
	})
	filesHandler := files.NewHandler(provider, log)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Use(appMiddleware.NoCache)

		r.Route("/upload", func(r chi.Router) {
			r.Post("/", uploadHandler.Upload)
			r.Options("/", uploadHandler.Preflight)
			r.Get("/", uploadHandler.Info)
		})

		// Reached through the deleteUrl returned by an upload.
		r.Route("/files/{"+appMiddleware.FileIDParam+"}", func(r chi.Router) {
			r.Use(appMiddleware.RequireFileToken(tokens))
			r.Get("/", filesHandler.Metadata)
			r.Get("/signed", filesHandler.Signed)
			r.Delete("/delete", filesHandler.Delete)
			r.Post("/delete", filesHandler.Delete)
		})
	})

	return r
}
