package vector

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptStore covers every way the persisted pair can be unusable:
// missing artifacts, undecodable artifacts, or an index whose row count does
// not match the chunk-text count.
var ErrCorruptStore = errors.New("corrupt vector store")

const (
	indexFile  = "index.gob"
	chunksFile = "chunks.json"
)

// SaveStore persists the index and the ordered chunk texts under dir as two
// artifacts. Both are written to temporary files first and renamed into place
// only after both writes succeed, so a concurrent reader never observes a
// half-written pair.
func SaveStore(dir string, index *Flat, chunks []string) error {
	if index.Len() != len(chunks) {
		return fmt.Errorf("%w: %d index rows vs %d chunks", ErrCorruptStore, index.Len(), len(chunks))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmpIndex := filepath.Join(dir, indexFile+".tmp")
	tmpChunks := filepath.Join(dir, chunksFile+".tmp")

	if err := writeGob(tmpIndex, index); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := writeJSON(tmpChunks, chunks); err != nil {
		os.Remove(tmpIndex)
		return fmt.Errorf("writing chunks: %w", err)
	}

	if err := os.Rename(tmpIndex, filepath.Join(dir, indexFile)); err != nil {
		os.Remove(tmpChunks)
		return err
	}
	return os.Rename(tmpChunks, filepath.Join(dir, chunksFile))
}

// LoadStore reads both artifacts back and verifies the row correspondence
// invariant. Any failure is reported as ErrCorruptStore with detail.
func LoadStore(dir string) (*Flat, []string, error) {
	var index Flat
	if err := readGob(filepath.Join(dir, indexFile), &index); err != nil {
		return nil, nil, fmt.Errorf("%w: index artifact: %v", ErrCorruptStore, err)
	}

	var chunks []string
	if err := readJSON(filepath.Join(dir, chunksFile), &chunks); err != nil {
		return nil, nil, fmt.Errorf("%w: chunks artifact: %v", ErrCorruptStore, err)
	}

	if index.Len() != len(chunks) {
		return nil, nil, fmt.Errorf("%w: %d index rows vs %d chunks", ErrCorruptStore, index.Len(), len(chunks))
	}
	return &index, chunks, nil
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
