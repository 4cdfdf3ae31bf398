package knowledge

import "time"

// Chunk is one indexed slice of a source document.
type Chunk struct {
	ID        string    // unique identifier
	Content   string    // chunk text
	Source    string    // originating file name
	Position  int       // zero-based index of the chunk within its source
	Offset    int       // byte offset of the chunk in the extracted source text
	CreatedAt time.Time // indexing timestamp
}

// Result is a single search hit with its similarity score.
type Result struct {
	Chunk      Chunk
	Similarity float32 // cosine similarity, higher is closer
}

// SearchOption configures Search using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int
	source  string
	timeout time.Duration
}

// WithTopK sets the maximum number of results. Default is 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithSource restricts the search to chunks from one source file.
func WithSource(source string) SearchOption {
	return func(c *searchConfig) {
		c.source = source
	}
}

// WithTimeout overrides the per-search deadline. Default is 10 seconds.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
