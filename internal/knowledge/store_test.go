package knowledge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"

	"github.com/askdoc/askdoc/internal/log"
)

// mockEmbedder implements ai.Embedder for testing.
type mockEmbedder struct {
	embedErr    error         // error to return
	returnEmpty bool          // return an empty embedding
	delay       time.Duration // simulated processing delay
	embedding   []float32     // custom embedding to return
	callCount   int
	lastInput   string
}

func (m *mockEmbedder) Name() string { return "mock-embedder" }

func (m *mockEmbedder) Register(api.Registry) {}

func (m *mockEmbedder) Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	m.callCount++
	if len(req.Input) > 0 && len(req.Input[0].Content) > 0 {
		m.lastInput = req.Input[0].Content[0].Text
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.returnEmpty {
		return &ai.EmbedResponse{
			Embeddings: []*ai.Embedding{{Embedding: []float32{}}},
		}, nil
	}

	embedding := m.embedding
	if embedding == nil {
		embedding = []float32{0.1, 0.2, 0.3}
	}
	return &ai.EmbedResponse{
		Embeddings: []*ai.Embedding{{Embedding: embedding}},
	}, nil
}

// mockQuerier implements Querier for testing.
type mockQuerier struct {
	upsertErr         error
	searchErr         error
	countErr          error
	countSourcesErr   error
	listSourcesErr    error
	deleteBySourceErr error
	deleteAllErr      error

	searchResults []SearchChunksRow
	countResult   int64
	sourcesResult []string

	upsertCalls         []UpsertChunkParams
	searchCalls         []SearchChunksParams
	searchBySourceCalls []SearchChunksBySourceParams
	deletedSources      []string
	deleteAllCalls      int
}

func (m *mockQuerier) UpsertChunk(_ context.Context, arg UpsertChunkParams) error {
	m.upsertCalls = append(m.upsertCalls, arg)
	return m.upsertErr
}

func (m *mockQuerier) SearchChunks(_ context.Context, arg SearchChunksParams) ([]SearchChunksRow, error) {
	m.searchCalls = append(m.searchCalls, arg)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func (m *mockQuerier) SearchChunksBySource(_ context.Context, arg SearchChunksBySourceParams) ([]SearchChunksRow, error) {
	m.searchBySourceCalls = append(m.searchBySourceCalls, arg)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func (m *mockQuerier) CountChunks(context.Context) (int64, error) {
	return m.countResult, m.countErr
}

func (m *mockQuerier) CountSources(context.Context) (int64, error) {
	return m.countResult, m.countSourcesErr
}

func (m *mockQuerier) ListSources(context.Context) ([]string, error) {
	return m.sourcesResult, m.listSourcesErr
}

func (m *mockQuerier) DeleteChunksBySource(_ context.Context, source string) error {
	m.deletedSources = append(m.deletedSources, source)
	return m.deleteBySourceErr
}

func (m *mockQuerier) DeleteAllChunks(context.Context) error {
	m.deleteAllCalls++
	return m.deleteAllErr
}

func TestAdd(t *testing.T) {
	querier := &mockQuerier{}
	embedder := &mockEmbedder{}
	store := New(querier, embedder, log.NewNop())

	chunk := Chunk{
		ID:        "chunk-1",
		Content:   "Go is a compiled language.",
		Source:    "go_intro.pdf",
		Position:  3,
		Offset:    2400,
		CreatedAt: time.Now(),
	}
	if err := store.Add(context.Background(), chunk); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if embedder.lastInput != chunk.Content {
		t.Errorf("embedder input = %q, want chunk content", embedder.lastInput)
	}
	if len(querier.upsertCalls) != 1 {
		t.Fatalf("upsert calls = %d, want 1", len(querier.upsertCalls))
	}
	arg := querier.upsertCalls[0]
	if arg.ID != "chunk-1" || arg.Source != "go_intro.pdf" || arg.Position != 3 || arg.ByteOffset != 2400 {
		t.Errorf("upsert params = %+v", arg)
	}
	if arg.Embedding == nil {
		t.Error("upsert params missing embedding")
	}
	if !arg.CreatedAt.Valid {
		t.Error("CreatedAt not marked valid")
	}
}

func TestAdd_EmbedderError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	store := New(&mockQuerier{}, &mockEmbedder{embedErr: wantErr}, log.NewNop())

	err := store.Add(context.Background(), Chunk{ID: "c", Content: "text"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Add() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestAdd_EmptyEmbedding(t *testing.T) {
	store := New(&mockQuerier{}, &mockEmbedder{returnEmpty: true}, log.NewNop())

	if err := store.Add(context.Background(), Chunk{ID: "c", Content: "text"}); err == nil {
		t.Fatal("Add() with empty embedding succeeded, want error")
	}
}

func TestAdd_UpsertError(t *testing.T) {
	wantErr := errors.New("connection refused")
	store := New(&mockQuerier{upsertErr: wantErr}, &mockEmbedder{}, log.NewNop())

	err := store.Add(context.Background(), Chunk{ID: "c", Content: "text"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Add() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSearch(t *testing.T) {
	querier := &mockQuerier{
		searchResults: []SearchChunksRow{
			{ID: "a", Content: "first", Source: "doc.pdf", Position: 0, Similarity: 0.92},
			{ID: "b", Content: "second", Source: "doc.pdf", Position: 4, Similarity: 0.81},
		},
	}
	embedder := &mockEmbedder{}
	store := New(querier, embedder, log.NewNop())

	results, err := store.Search(context.Background(), "compiled language")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if embedder.lastInput != "compiled language" {
		t.Errorf("embedder input = %q, want the query text", embedder.lastInput)
	}
	if len(querier.searchCalls) != 1 {
		t.Fatalf("search calls = %d, want 1", len(querier.searchCalls))
	}
	if got := querier.searchCalls[0].ResultLimit; got != 5 {
		t.Errorf("default result limit = %d, want 5", got)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Chunk.ID != "a" || results[0].Similarity != 0.92 {
		t.Errorf("result 0 = %+v", results[0])
	}
	if results[1].Chunk.Position != 4 {
		t.Errorf("result 1 position = %d, want 4", results[1].Chunk.Position)
	}
}

func TestSearch_WithOptions(t *testing.T) {
	querier := &mockQuerier{}
	store := New(querier, &mockEmbedder{}, log.NewNop())

	_, err := store.Search(context.Background(), "query",
		WithTopK(12), WithSource("spec.md"))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(querier.searchBySourceCalls) != 1 {
		t.Fatalf("by-source calls = %d, want 1", len(querier.searchBySourceCalls))
	}
	arg := querier.searchBySourceCalls[0]
	if arg.Source != "spec.md" || arg.ResultLimit != 12 {
		t.Errorf("by-source params = %+v", arg)
	}
	if len(querier.searchCalls) != 0 {
		t.Errorf("unfiltered search called %d times, want 0", len(querier.searchCalls))
	}
}

func TestSearch_EmbedderTimeout(t *testing.T) {
	embedder := &mockEmbedder{delay: 200 * time.Millisecond}
	store := New(&mockQuerier{}, embedder, log.NewNop())

	_, err := store.Search(context.Background(), "query", WithTimeout(10*time.Millisecond))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Search() error = %v, want DeadlineExceeded", err)
	}
}

func TestSearch_QuerierError(t *testing.T) {
	wantErr := errors.New("relation does not exist")
	store := New(&mockQuerier{searchErr: wantErr}, &mockEmbedder{}, log.NewNop())

	_, err := store.Search(context.Background(), "query")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Search() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSearch_NoResults(t *testing.T) {
	store := New(&mockQuerier{}, &mockEmbedder{}, log.NewNop())

	results, err := store.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestCount(t *testing.T) {
	store := New(&mockQuerier{countResult: 42}, &mockEmbedder{}, log.NewNop())

	got, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Count() = %d, want 42", got)
	}
}

func TestCount_Error(t *testing.T) {
	wantErr := errors.New("timeout")
	store := New(&mockQuerier{countErr: wantErr}, &mockEmbedder{}, log.NewNop())

	if _, err := store.Count(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Count() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSources(t *testing.T) {
	store := New(&mockQuerier{sourcesResult: []string{"a.pdf", "b.md"}}, &mockEmbedder{}, log.NewNop())

	got, err := store.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a.pdf" || got[1] != "b.md" {
		t.Errorf("Sources() = %v", got)
	}
}

func TestDeleteSource(t *testing.T) {
	querier := &mockQuerier{}
	store := New(querier, &mockEmbedder{}, log.NewNop())

	if err := store.DeleteSource(context.Background(), "old.pdf"); err != nil {
		t.Fatalf("DeleteSource() error = %v", err)
	}
	if len(querier.deletedSources) != 1 || querier.deletedSources[0] != "old.pdf" {
		t.Errorf("deleted sources = %v, want [old.pdf]", querier.deletedSources)
	}
}

func TestDeleteAll(t *testing.T) {
	querier := &mockQuerier{}
	store := New(querier, &mockEmbedder{}, log.NewNop())

	if err := store.DeleteAll(context.Background()); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if querier.deleteAllCalls != 1 {
		t.Errorf("delete-all calls = %d, want 1", querier.deleteAllCalls)
	}
}
