package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"vocatus/backend/features/chat"
	"vocatus/backend/features/stats"
	"vocatus/backend/internal/adapter/gemini"
	"vocatus/backend/internal/adapter/openai"
	"vocatus/backend/internal/config"
	"vocatus/backend/internal/middleware"
	"vocatus/backend/internal/retrieval"
)

type App struct {
	Handler   http.Handler
	Retrieval *retrieval.Service

	port int
}

func New(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*App, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	retrievalService := retrieval.NewService(embedder, cfg.StoreDir, queryLogger)

	// Feature: Chat
	chatRepo := chat.NewPostgresRepo(db)
	completer, err := chat.NewOpenAICompleter(chat.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.ChatModel,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completer: %w", err)
	}
	chatService := chat.NewService(retrievalService, completer, chatRepo, cfg.RetrievalTopK)
	chatHandler := chat.NewHandler(chatService)

	// Feature: Stats
	statsHandler := stats.NewHandler(chatRepo, retrievalService)

	// Middleware: CORS
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

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /chat", middleware.CorrelationID(enableCORS(chatHandler.Ask)))
	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:   mux,
		Retrieval: retrievalService,
		port:      cfg.ServerPort,
	}, nil
}

// newEmbedder selects the embedding backend from configuration. An empty
// model name lets each adapter fall back to its provider default.
func newEmbedder(cfg *config.Config) (retrieval.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "gemini":
		return gemini.NewEmbedder(context.Background(), cfg.GeminiAPIKey, cfg.EmbeddingModel)
	default:
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.EmbedRetries,
		})
	}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
