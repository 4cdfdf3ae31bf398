package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/askdoc/askdoc/internal/knowledge"
)

// DefaultTopK is the number of chunks retrieved when the caller does
// not override it.
const DefaultTopK = 5


// Searcher is the slice of knowledge.Store behaviour Retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Retriever finds the chunks most relevant to a query.
type Retriever struct {
	store  Searcher
	topK   int
	logger *slog.Logger
}

// NewRetriever creates a Retriever. topK <= 0 falls back to DefaultTopK.
func NewRetriever(store Searcher, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, topK: topK, logger: logger}
}

// Retrieve returns the chunks nearest to query, best first. Additional
// options override the retriever's defaults, e.g. knowledge.WithTopK or
// knowledge.WithSource.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error) {
	all := make([]knowledge.SearchOption, 0, len(opts)+1)
	all = append(all, knowledge.WithTopK(r.topK))
	all = append(all, opts...)

	results, err := r.store.Search(ctx, query, all...)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	r.logger.Debug("retrieved chunks", "query_length", len(query), "results", len(results))
	return results, nil
}

// RetrieveAndFormat retrieves chunks and renders them as model context
// in one call.
func (r *Retriever) RetrieveAndFormat(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, string, error) {
	results, err := r.Retrieve(ctx, query, opts...)
	if err != nil {
		return nil, "", err
	}
	return results, FormatContext(results), nil
}

// FormatContext renders retrieval results as a context block for the
// model. Each result becomes a numbered, source-attributed section;
// sections are separated by blank lines. An empty result set yields an
// empty string so the prompt composer can drop the context section.
func FormatContext(results []knowledge.Result) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for i, result := range results {
		source := result.Chunk.Source
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Source %d: %s]\n%s", i+1, source, result.Chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Sources returns the distinct source files behind the results, in
// first-occurrence order.
func Sources(results []knowledge.Result) []string {
	var sources []string
	seen := make(map[string]struct{}, len(results))
	for _, result := range results {
		source := result.Chunk.Source
		if source == "" {
			source = "Unknown"
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}
	return sources
}
