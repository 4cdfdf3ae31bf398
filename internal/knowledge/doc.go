// Package knowledge persists document chunks and their embeddings in
// PostgreSQL with pgvector, and answers nearest-neighbour queries over
// them.
//
// Store is the package's entry point. It owns embedding generation: Add
// embeds chunk content before writing it, Search embeds the query
// before running the vector scan. Database access goes through the
// consumer-defined Querier interface so tests can substitute a mock and
// production can hand in Queries backed by a pgx pool.
//
// Similarity is cosine similarity derived from pgvector's cosine
// distance operator (1 - distance), so results order from most to least
// similar.
package knowledge
