package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"vocatus/backend/internal/middleware"
	"vocatus/backend/internal/vector"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service is the runtime-facing retrieval facade. The persisted store is
// loaded once, on first use, and cached read-only for the life of the
// process; a re-ingestion therefore requires a restart to be picked up.
type Service struct {
	embedder Embedder
	storeDir string
	logger   *QueryLogger

	once    sync.Once
	index   *vector.Flat
	chunks  []string
	loadErr error
}

func NewService(e Embedder, storeDir string, l *QueryLogger) *Service {
	return &Service{embedder: e, storeDir: storeDir, logger: l}
}

func (s *Service) load(ctx context.Context) error {
	s.once.Do(func() {
		s.index, s.chunks, s.loadErr = vector.LoadStore(s.storeDir)
		if s.loadErr == nil {
			slog.InfoContext(ctx, "vector store loaded", "rows", s.index.Len(), "dimension", s.index.Dim)
		}
	})
	if s.loadErr != nil {
		slog.ErrorContext(ctx, "vector store unavailable", "store", s.storeDir, "error", s.loadErr)
		return fmt.Errorf("loading store: %w", s.loadErr)
	}
	return nil
}

// IndexSize reports the number of indexed chunks and their dimension,
// loading the store on first use like Retrieve does.
func (s *Service) IndexSize(ctx context.Context) (rows, dim int, err error) {
	if err := s.load(ctx); err != nil {
		return 0, 0, err
	}
	return s.index.Len(), s.index.Dim, nil
}

// Retrieve embeds the query, searches the index, and returns the texts of
// the k best-matching chunks joined with blank lines. An empty index yields
// an empty string without error. A store that failed to load is reported as
// an error on every call, so the condition stays visible to operators.
func (s *Service) Retrieve(ctx context.Context, query string, k int) (string, error) {
	start := time.Now()

	if err := s.load(ctx); err != nil {
		return "", err
	}

	if s.index.Len() == 0 {
		return "", nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	matches, err := s.index.Search(vec, k)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = s.chunks[m.Row]
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:         query,
			NumResults:    len(matches),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}

	return strings.Join(parts, "\n\n"), nil
}
