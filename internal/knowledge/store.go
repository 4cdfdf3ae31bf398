package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// Store manages chunk persistence and vector similarity search.
// It embeds content with the configured embedder on write and embeds
// queries on search.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	queries  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a Store.
//
// Example (production):
//
//	store := knowledge.New(knowledge.NewQueries(pool), embedder, logger)
//
// Example (testing):
//
//	store := knowledge.New(mockQuerier, mockEmbedder, logger)
func New(querier Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		queries:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// Add embeds the chunk's content and upserts it.
func (s *Store) Add(ctx context.Context, chunk Chunk) error {
	embedding, err := s.embed(ctx, chunk.Content)
	if err != nil {
		return fmt.Errorf("embedding chunk %q: %w", chunk.ID, err)
	}

	createdAt := pgtype.Timestamptz{
		Time:  chunk.CreatedAt,
		Valid: !chunk.CreatedAt.IsZero(),
	}

	err = s.queries.UpsertChunk(ctx, UpsertChunkParams{
		ID:         chunk.ID,
		Content:    chunk.Content,
		Source:     chunk.Source,
		Position:   int32(chunk.Position),
		ByteOffset: int32(chunk.Offset),
		Embedding:  embedding,
		CreatedAt:  createdAt,
	})
	if err != nil {
		return fmt.Errorf("upserting chunk %q: %w", chunk.ID, err)
	}

	s.logger.Debug("added chunk", "id", chunk.ID, "source", chunk.Source, "position", chunk.Position)
	return nil
}

// Search embeds the query and returns the nearest chunks ordered by
// similarity, best first.
//
// Example:
//
//	results, err := store.Search(ctx, "error handling",
//	    knowledge.WithTopK(10),
//	    knowledge.WithSource("effective_go.pdf"))
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	// Bound the whole search so a slow vector scan cannot hold the
	// request open indefinitely.
	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	embedding, err := s.embed(queryCtx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query embedding timeout: %w", err)
		}
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var rows []SearchChunksRow
	if cfg.source != "" {
		rows, err = s.queries.SearchChunksBySource(queryCtx, SearchChunksBySourceParams{
			QueryEmbedding: embedding,
			Source:         cfg.source,
			ResultLimit:    int32(cfg.topK),
		})
	} else {
		rows, err = s.queries.SearchChunks(queryCtx, SearchChunksParams{
			QueryEmbedding: embedding,
			ResultLimit:    int32(cfg.topK),
		})
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("vector search timeout: %w", err)
		}
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		var createdAt time.Time
		if row.CreatedAt.Valid {
			createdAt = row.CreatedAt.Time
		}
		results = append(results, Result{
			Chunk: Chunk{
				ID:        row.ID,
				Content:   row.Content,
				Source:    row.Source,
				Position:  int(row.Position),
				Offset:    int(row.ByteOffset),
				CreatedAt: createdAt,
			},
			Similarity: row.Similarity,
		})
	}
	return results, nil
}

// Count returns the total number of indexed chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.queries.CountChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	if count > math.MaxInt {
		return 0, fmt.Errorf("chunk count %d exceeds platform int capacity", count)
	}
	return int(count), nil
}

// CountSources returns the number of distinct indexed source files.
func (s *Store) CountSources(ctx context.Context) (int, error) {
	count, err := s.queries.CountSources(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting sources: %w", err)
	}
	if count > math.MaxInt {
		return 0, fmt.Errorf("source count %d exceeds platform int capacity", count)
	}
	return int(count), nil
}

// Sources lists distinct indexed source files in lexical order.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	sources, err := s.queries.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return sources, nil
}

// DeleteSource removes all chunks belonging to one source file.
func (s *Store) DeleteSource(ctx context.Context, source string) error {
	if err := s.queries.DeleteChunksBySource(ctx, source); err != nil {
		return fmt.Errorf("deleting chunks of %q: %w", source, err)
	}
	s.logger.Debug("deleted source", "source", source)
	return nil
}

// DeleteAll empties the corpus. Used by reindexing before a fresh build.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := s.queries.DeleteAllChunks(ctx); err != nil {
		return fmt.Errorf("deleting all chunks: %w", err)
	}
	s.logger.Debug("deleted all chunks")
	return nil
}

// embed runs content through the embedder and validates the response.
func (s *Store) embed(ctx context.Context, content string) (*pgvector.Vector, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(content)}},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, errors.New("embedder returned empty embedding")
	}

	v := pgvector.NewVector(resp.Embeddings[0].Embedding)
	return &v, nil
}
