package document_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vocatus/backend/internal/document"
)

func TestLoadCorpus_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	l := document.NewLoader(document.ContinueOnError)
	_, err := l.LoadCorpus(context.Background(), dir)
	assert.ErrorIs(t, err, document.ErrNoDocuments)
}

func TestLoadCorpus_MissingDir(t *testing.T) {
	l := document.NewLoader(document.ContinueOnError)
	_, err := l.LoadCorpus(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, document.ErrNoDocuments)
}

func TestLoadCorpus_IgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600))

	l := document.NewLoader(document.ContinueOnError)
	_, err := l.LoadCorpus(context.Background(), dir)
	assert.ErrorIs(t, err, document.ErrNoDocuments)
}

func TestLoadCorpus_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o600))

	t.Run("ContinueOnError", func(t *testing.T) {
		l := document.NewLoader(document.ContinueOnError)
		_, err := l.LoadCorpus(context.Background(), dir)
		// The only document is skipped, so the corpus is empty.
		assert.ErrorIs(t, err, document.ErrNoDocuments)
	})

	t.Run("FailFast", func(t *testing.T) {
		l := document.NewLoader(document.FailFast)
		_, err := l.LoadCorpus(context.Background(), dir)
		require.Error(t, err)
		assert.NotErrorIs(t, err, document.ErrNoDocuments)
	})
}

func TestLoadCorpus_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("not a pdf"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := document.NewLoader(document.ContinueOnError)
	_, err := l.LoadCorpus(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
