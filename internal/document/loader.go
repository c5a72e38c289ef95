package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoDocuments is returned when the source directory holds nothing to ingest.
var ErrNoDocuments = errors.New("no documents found")

// ErrorPolicy decides what happens when a single document fails extraction.
type ErrorPolicy int

const (
	// ContinueOnError skips the bad document with a warning.
	ContinueOnError ErrorPolicy = iota
	// FailFast aborts the whole ingestion run on the first bad document.
	FailFast
)

type Loader struct {
	policy ErrorPolicy
}

func NewLoader(policy ErrorPolicy) *Loader {
	return &Loader{policy: policy}
}

// LoadCorpus reads every PDF in dir in lexicographic filename order, extracts
// text per page, prefixes each non-empty page with a provenance marker naming
// its file, and joins all pages with blank lines into one corpus string.
// Pages without extractable text are skipped silently.
func (l *Loader) LoadCorpus(ctx context.Context, dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNoDocuments, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	var parts []string
	skipped := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		pages, err := extractPages(filepath.Join(dir, name))
		if err != nil {
			if l.policy == FailFast {
				return "", fmt.Errorf("extracting %s: %w", name, err)
			}
			slog.WarnContext(ctx, "skipping unreadable document", "file", name, "error", err)
			skipped++
			continue
		}

		for _, page := range pages {
			parts = append(parts, fmt.Sprintf("[SOURCE: %s]\n%s", name, page))
		}
	}

	if skipped == len(names) {
		return "", fmt.Errorf("%w: all %d documents in %s unreadable", ErrNoDocuments, skipped, dir)
	}

	slog.InfoContext(ctx, "corpus loaded", "documents", len(names)-skipped, "skipped", skipped, "pages", len(parts))
	return strings.Join(parts, "\n\n"), nil
}

// extractPages returns the trimmed text of each page that yields any.
func extractPages(path string) (pages []string, err error) {
	// The pdf package panics on some malformed files; treat that as a
	// normal extraction error so the skip policy can apply.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		t = strings.TrimSpace(t)
		if t != "" {
			pages = append(pages, t)
		}
	}
	return pages, nil
}
