// Package rag provides retrieval-augmented generation support: finding
// the chunks relevant to a query, formatting them into model context,
// and building the chunk corpus from a document directory.
//
// Retriever answers per-query lookups against the knowledge store.
// Indexer rebuilds the corpus: it walks a directory, extracts text,
// chunks it, and writes the chunks back through the store, collecting
// per-file failures instead of aborting on the first bad document.
package rag
