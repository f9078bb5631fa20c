package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"studymate/backend/features/ask"
	"studymate/backend/internal/adapter/gemini"
	"studymate/backend/internal/app"
	"studymate/backend/internal/config"
	"studymate/backend/internal/logger"
)

func main() {
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	embedder := gemini.NewEmbedder(client, cfg.EmbeddingModel)
	generator := gemini.NewGenerator(client, cfg.GenerateModel)

	queryLogger, err := ask.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = ask.NewQueryLogger(os.Stdout)
	}

	a := app.New(cfg, embedder, generator, queryLogger)
	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
