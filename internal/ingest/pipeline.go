package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vocatus/backend/internal/text"
	"vocatus/backend/internal/vector"
)

const progressEvery = 25

// Embedder is the single capability the pipeline needs from a provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Loader produces the corpus string the pipeline chunks and embeds.
type Loader interface {
	LoadCorpus(ctx context.Context, dir string) (string, error)
}

type Options struct {
	SourceDir     string
	StoreDir      string
	ChunkWords    int
	OverlapWords  int
	MinChunkChars int
	Concurrency   int
	EmbedTimeout  time.Duration
}

// Result summarizes one ingestion run for logging and exit reporting.
type Result struct {
	Chunks    int
	Dropped   int
	Dimension int
}

type Pipeline struct {
	loader   Loader
	embedder Embedder
	opts     Options
}

func NewPipeline(l Loader, e Embedder, opts Options) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = 60 * time.Second
	}
	return &Pipeline{loader: l, embedder: e, opts: opts}
}

// Run executes the full rebuild: load corpus, chunk, embed, build the flat
// index, persist. Nothing is written unless every stage succeeds, so a
// failed run leaves any previous store untouched.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	corpus, err := p.loader.LoadCorpus(ctx, p.opts.SourceDir)
	if err != nil {
		return nil, err
	}

	chunks := text.Window(corpus, p.opts.ChunkWords, p.opts.OverlapWords, p.opts.MinChunkChars)
	dropped := text.Dropped(corpus, p.opts.ChunkWords, p.opts.OverlapWords, p.opts.MinChunkChars)
	if len(chunks) == 0 {
		return nil, errors.New("corpus produced no chunks above the minimum length")
	}
	slog.InfoContext(ctx, "corpus chunked", "chunks", len(chunks), "dropped_fragments", dropped)

	vectors, err := p.embedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}

	index := vector.NewFlat(0)
	for _, v := range vectors {
		vector.Normalize(v)
	}
	if err := index.Add(vectors); err != nil {
		return nil, err
	}

	if err := vector.SaveStore(p.opts.StoreDir, index, chunks); err != nil {
		return nil, fmt.Errorf("persisting store: %w", err)
	}

	slog.InfoContext(ctx, "ingestion complete", "chunks", len(chunks), "dimension", index.Dim, "store", p.opts.StoreDir)
	return &Result{Chunks: len(chunks), Dropped: dropped, Dimension: index.Dim}, nil
}

// embedBatch embeds every chunk with a bounded worker pool. Each result is
// written into the slot matching its input position, so output order always
// equals input order regardless of scheduling. The first error cancels the
// remaining work.
func (p *Pipeline) embedBatch(ctx context.Context, chunks []string) ([][]float32, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, p.opts.Concurrency)
	errCh := make(chan error, len(chunks))
	vectors := make([][]float32, len(chunks))

	for i := range chunks {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errCh <- err
				return
			}

			embedCtx, done := context.WithTimeout(ctx, p.opts.EmbedTimeout)
			v, err := p.embedder.Embed(embedCtx, chunks[idx])
			done()
			if err != nil {
				cancel()
				errCh <- fmt.Errorf("embedding chunk %d: %w", idx, err)
				return
			}
			vectors[idx] = v
			errCh <- nil
		}(i)
	}

	var firstErr error
	for completed := 1; completed <= len(chunks); completed++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
		if completed%progressEvery == 0 {
			slog.InfoContext(ctx, "embedding progress", "done", completed, "total", len(chunks))
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
