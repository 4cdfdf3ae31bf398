package knowledge

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// Querier defines the database operations Store needs. Interfaces are
// defined by the consumer, so Store depends on this abstraction rather
// than on a concrete pool; tests substitute a mock.
type Querier interface {
	// UpsertChunk inserts or replaces a chunk.
	UpsertChunk(ctx context.Context, arg UpsertChunkParams) error

	// SearchChunks performs an unfiltered vector search.
	SearchChunks(ctx context.Context, arg SearchChunksParams) ([]SearchChunksRow, error)

	// SearchChunksBySource performs a vector search restricted to one source.
	SearchChunksBySource(ctx context.Context, arg SearchChunksBySourceParams) ([]SearchChunksRow, error)

	// CountChunks counts all chunks.
	CountChunks(ctx context.Context) (int64, error)

	// CountSources counts distinct source files.
	CountSources(ctx context.Context) (int64, error)

	// ListSources lists distinct source files in lexical order.
	ListSources(ctx context.Context) ([]string, error)

	// DeleteChunksBySource removes all chunks of one source.
	DeleteChunksBySource(ctx context.Context, source string) error

	// DeleteAllChunks empties the corpus.
	DeleteAllChunks(ctx context.Context) error
}

// DBTX is the subset of pgx pool/connection/transaction behaviour
// Queries relies on.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the production Querier backed by PostgreSQL.
type Queries struct {
	db DBTX
}

// NewQueries returns a Queries bound to the given pool or transaction.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// UpsertChunkParams carries the column values for UpsertChunk.
type UpsertChunkParams struct {
	ID         string
	Content    string
	Source     string
	Position   int32
	ByteOffset int32
	Embedding  *pgvector.Vector
	CreatedAt  pgtype.Timestamptz
}

const upsertChunk = `
INSERT INTO chunks (id, content, source, position, byte_offset, embedding, created_at)
VALUES ($1, $2, $3, $4, $5, $6::vector, $7)
ON CONFLICT (id) DO UPDATE SET
    content     = EXCLUDED.content,
    source      = EXCLUDED.source,
    position    = EXCLUDED.position,
    byte_offset = EXCLUDED.byte_offset,
    embedding   = EXCLUDED.embedding,
    created_at  = EXCLUDED.created_at
`

func (q *Queries) UpsertChunk(ctx context.Context, arg UpsertChunkParams) error {
	_, err := q.db.Exec(ctx, upsertChunk,
		arg.ID, arg.Content, arg.Source, arg.Position, arg.ByteOffset, arg.Embedding, arg.CreatedAt)
	return err
}

// SearchChunksParams carries the inputs for an unfiltered vector search.
type SearchChunksParams struct {
	QueryEmbedding *pgvector.Vector
	ResultLimit    int32
}

// SearchChunksRow is one vector search hit.
type SearchChunksRow struct {
	ID         string
	Content    string
	Source     string
	Position   int32
	ByteOffset int32
	CreatedAt  pgtype.Timestamptz
	Similarity float32
}

const searchChunks = `
SELECT id, content, source, position, byte_offset, created_at,
       1 - (embedding <=> $1::vector) AS similarity
FROM chunks
ORDER BY embedding <=> $1::vector
LIMIT $2
`

func (q *Queries) SearchChunks(ctx context.Context, arg SearchChunksParams) ([]SearchChunksRow, error) {
	rows, err := q.db.Query(ctx, searchChunks, arg.QueryEmbedding, arg.ResultLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSearchRows(rows)
}

// SearchChunksBySourceParams carries the inputs for a source-filtered
// vector search.
type SearchChunksBySourceParams struct {
	QueryEmbedding *pgvector.Vector
	Source         string
	ResultLimit    int32
}

const searchChunksBySource = `
SELECT id, content, source, position, byte_offset, created_at,
       1 - (embedding <=> $1::vector) AS similarity
FROM chunks
WHERE source = $2
ORDER BY embedding <=> $1::vector
LIMIT $3
`

func (q *Queries) SearchChunksBySource(ctx context.Context, arg SearchChunksBySourceParams) ([]SearchChunksRow, error) {
	rows, err := q.db.Query(ctx, searchChunksBySource, arg.QueryEmbedding, arg.Source, arg.ResultLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSearchRows(rows)
}

func scanSearchRows(rows pgx.Rows) ([]SearchChunksRow, error) {
	var items []SearchChunksRow
	for rows.Next() {
		var r SearchChunksRow
		if err := rows.Scan(&r.ID, &r.Content, &r.Source, &r.Position, &r.ByteOffset, &r.CreatedAt, &r.Similarity); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countChunks = `SELECT count(*) FROM chunks`

func (q *Queries) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countChunks).Scan(&count)
	return count, err
}

const countSources = `SELECT count(DISTINCT source) FROM chunks`

func (q *Queries) CountSources(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countSources).Scan(&count)
	return count, err
}

const listSources = `SELECT DISTINCT source FROM chunks ORDER BY source`

func (q *Queries) ListSources(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listSources)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

const deleteChunksBySource = `DELETE FROM chunks WHERE source = $1`

func (q *Queries) DeleteChunksBySource(ctx context.Context, source string) error {
	_, err := q.db.Exec(ctx, deleteChunksBySource, source)
	return err
}

const deleteAllChunks = `DELETE FROM chunks`

func (q *Queries) DeleteAllChunks(ctx context.Context) error {
	_, err := q.db.Exec(ctx, deleteAllChunks)
	return err
}
