package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocatus/backend/internal/adapter/gemini"
	"vocatus/backend/internal/adapter/openai"
	"vocatus/backend/internal/config"
	"vocatus/backend/internal/document"
	"vocatus/backend/internal/ingest"
	"vocatus/backend/internal/logger"
)

// Rebuilds the vector store from the PDF source directory. The running API
// server picks up a new store on its next restart.
func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}

	policy := document.ContinueOnError
	if cfg.IngestFailFast {
		policy = document.FailFast
	}

	pipeline := ingest.NewPipeline(document.NewLoader(policy), embedder, ingest.Options{
		SourceDir:     cfg.SourceDir,
		StoreDir:      cfg.StoreDir,
		ChunkWords:    cfg.ChunkWords,
		OverlapWords:  cfg.OverlapWords,
		MinChunkChars: cfg.MinChunkChars,
		Concurrency:   cfg.EmbedConcurrency,
		EmbedTimeout:  time.Duration(cfg.EmbedTimeoutSecs) * time.Second,
	})

	start := time.Now()
	result, err := pipeline.Run(ctx)
	if err != nil {
		slog.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	slog.Info("ingestion complete",
		"chunks", result.Chunks,
		"dropped_fragments", result.Dropped,
		"dimension", result.Dimension,
		"store", cfg.StoreDir,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

func newEmbedder(ctx context.Context, cfg *config.Config) (ingest.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "gemini":
		return gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	default:
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.EmbedRetries,
		})
	}
}
