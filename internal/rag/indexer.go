package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/askdoc/askdoc/internal/document"
	"github.com/askdoc/askdoc/internal/knowledge"
)

// ErrNoDocuments is returned by Reindex when the corpus directory
// contains no indexable files.
var ErrNoDocuments = errors.New("no indexable documents found")

// IndexerStore is the slice of knowledge.Store behaviour Indexer needs.
type IndexerStore interface {
	// Add embeds and persists one chunk.
	Add(ctx context.Context, chunk knowledge.Chunk) error

	// DeleteAll wipes the corpus before a rebuild.
	DeleteAll(ctx context.Context) error
}

// FileError records one document that failed during indexing.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// IndexResult summarizes one corpus rebuild.
type IndexResult struct {
	FilesIndexed  int
	FilesFailed   int
	ChunksIndexed int
	Failures      []FileError
	Duration      time.Duration
}

// Indexer rebuilds the chunk corpus from a directory of documents.
type Indexer struct {
	store   IndexerStore
	chunker *document.Chunker
	logger  *slog.Logger
}

// NewIndexer creates an Indexer. A nil chunker uses the default
// chunking parameters.
func NewIndexer(store IndexerStore, chunker *document.Chunker, logger *slog.Logger) *Indexer {
	if chunker == nil {
		chunker = document.NewChunker(0, -1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: store, chunker: chunker, logger: logger}
}

// Reindex rebuilds the corpus from the documents in dir. The existing
// corpus is wiped first, then every supported file is extracted,
// chunked, and stored. A file that fails extraction or storage is
// recorded in the result and skipped; the rebuild continues with the
// remaining files. Reindex fails outright only when the directory is
// unreadable, holds no indexable files, or the initial wipe fails.
func (ix *Indexer) Reindex(ctx context.Context, dir string) (*IndexResult, error) {
	start := time.Now()

	paths, err := ix.listDocuments(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	if err := ix.store.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("wiping corpus: %w", err)
	}

	result := &IndexResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := ix.indexFile(ctx, path)
		if err != nil {
			ix.logger.Warn("indexing file failed", "path", path, "error", err)
			result.FilesFailed++
			result.Failures = append(result.Failures, FileError{Path: path, Err: err})
			continue
		}
		result.FilesIndexed++
		result.ChunksIndexed += n
	}

	result.Duration = time.Since(start)
	ix.logger.Info("corpus rebuilt",
		"dir", dir,
		"files_indexed", result.FilesIndexed,
		"files_failed", result.FilesFailed,
		"chunks", result.ChunksIndexed,
		"duration", result.Duration)
	return result, nil
}

// indexFile extracts, chunks, and stores one document. Returns the
// number of chunks written.
func (ix *Indexer) indexFile(ctx context.Context, path string) (int, error) {
	text, err := document.Extract(path)
	if err != nil {
		return 0, err
	}

	source := filepath.Base(path)
	now := time.Now()

	chunks := ix.chunker.Split(text)
	for i, c := range chunks {
		chunk := knowledge.Chunk{
			ID:        fmt.Sprintf("%s#%d", source, i),
			Content:   c.Text,
			Source:    source,
			Position:  i,
			Offset:    c.Offset,
			CreatedAt: now,
		}
		if err := ix.store.Add(ctx, chunk); err != nil {
			return 0, fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}
	return len(chunks), nil
}

// listDocuments returns the supported files directly inside dir, in
// lexical order for deterministic indexing.
func (ix *Indexer) listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !document.SupportedExt(filepath.Ext(entry.Name())) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
