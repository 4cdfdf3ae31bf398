package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/askdoc/askdoc/internal/knowledge"
	"github.com/askdoc/askdoc/internal/log"
)

// mockSearcher implements Searcher for testing.
type mockSearcher struct {
	results   []knowledge.Result
	err       error
	calls     int
	lastQuery string
}

func (m *mockSearcher) Search(_ context.Context, query string, _ ...knowledge.SearchOption) ([]knowledge.Result, error) {
	m.calls++
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func result(id, content, source string) knowledge.Result {
	return knowledge.Result{
		Chunk: knowledge.Chunk{ID: id, Content: content, Source: source},
	}
}

func TestRetrieve(t *testing.T) {
	searcher := &mockSearcher{
		results: []knowledge.Result{
			result("a", "first chunk", "guide.pdf"),
			result("b", "second chunk", "notes.md"),
		},
	}
	r := NewRetriever(searcher, 0, log.NewNop())

	got, err := r.Retrieve(context.Background(), "how do goroutines work")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if searcher.lastQuery != "how do goroutines work" {
		t.Errorf("search query = %q", searcher.lastQuery)
	}
	if len(got) != 2 {
		t.Errorf("results = %d, want 2", len(got))
	}
}

func TestRetrieve_Error(t *testing.T) {
	wantErr := errors.New("embedding backend down")
	r := NewRetriever(&mockSearcher{err: wantErr}, 5, log.NewNop())

	_, err := r.Retrieve(context.Background(), "query")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Retrieve() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestRetrieveAndFormat(t *testing.T) {
	searcher := &mockSearcher{
		results: []knowledge.Result{result("a", "chunk text", "guide.pdf")},
	}
	r := NewRetriever(searcher, 5, log.NewNop())

	results, ctx, err := r.RetrieveAndFormat(context.Background(), "query")
	if err != nil {
		t.Fatalf("RetrieveAndFormat() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
	if !strings.Contains(ctx, "[Source 1: guide.pdf]") {
		t.Errorf("context = %q, missing source header", ctx)
	}
}

func TestFormatContext(t *testing.T) {
	results := []knowledge.Result{
		result("a", "Go has goroutines.", "concurrency.pdf"),
		result("b", "Channels synchronize them.", "concurrency.pdf"),
	}

	got := FormatContext(results)
	want := "[Source 1: concurrency.pdf]\nGo has goroutines.\n\n[Source 2: concurrency.pdf]\nChannels synchronize them."
	if got != want {
		t.Errorf("FormatContext() = %q, want %q", got, want)
	}
}

func TestFormatContext_Empty(t *testing.T) {
	if got := FormatContext(nil); got != "" {
		t.Errorf("FormatContext(nil) = %q, want empty", got)
	}
}

func TestFormatContext_UnknownSource(t *testing.T) {
	got := FormatContext([]knowledge.Result{result("a", "text", "")})
	if !strings.HasPrefix(got, "[Source 1: Unknown]") {
		t.Errorf("FormatContext() = %q, want Unknown source label", got)
	}
}

func TestSources(t *testing.T) {
	results := []knowledge.Result{
		result("a", "x", "b.pdf"),
		result("b", "y", "a.pdf"),
		result("c", "z", "b.pdf"),
		result("d", "w", ""),
	}

	got := Sources(results)
	want := []string{"b.pdf", "a.pdf", "Unknown"}
	if len(got) != len(want) {
		t.Fatalf("Sources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSources_Empty(t *testing.T) {
	if got := Sources(nil); got != nil {
		t.Errorf("Sources(nil) = %v, want nil", got)
	}
}
