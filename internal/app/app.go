package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"studymate/backend/features/ask"
	"studymate/backend/features/ingest"
	"studymate/backend/features/stats"
	"studymate/backend/internal/config"
	"studymate/backend/internal/middleware"
	"studymate/backend/internal/vector"
)

type App struct {
	Handler http.Handler
	Store   *vector.Store

	port int
}

// New wires features together and returns an App whose Handler can be
// exercised directly in tests without a listening server.
func New(cfg *config.Config, embedder vector.Embedder, generator ask.Generator, queryLogger *ask.QueryLogger) *App {
	store := vector.NewStore()

	ingestService := ingest.NewService(store, embedder, cfg.ChunkSize, cfg.ChunkOverlap)
	ingestHandler := ingest.NewHandler(ingestService, cfg.MaxUploadSizeMB)

	askService := ask.NewService(store, embedder, generator, cfg.TopK, queryLogger)
	askHandler := ask.NewHandler(askService, time.Duration(cfg.StreamDelayMs)*time.Millisecond)

	statsHandler := stats.NewHandler(store)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("OPTIONS /", enableCORS(func(w http.ResponseWriter, r *http.Request) {}))
	mux.Handle("POST /upload", middleware.CorrelationID(enableCORS(ingestHandler.Upload)))
	mux.Handle("POST /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))
	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{Handler: mux, Store: store, port: cfg.ServerPort}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
