package models

import "context"

// VectorRecord is a piece of text and its embedding. Records are never mutated
// once created.
type VectorRecord struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// SearchResult is a stored text together with its cosine similarity to a query.
type SearchResult struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	// Index is the record's insertion position in the store
	Index int `json:"index"`
}

type VectorStore interface {
	KnowledgeWriter
	// Load replaces the in-memory records with the persisted snapshot.
	Load() LoadState
	// Add appends a record in memory only. Call Save to persist it.
	Add(record VectorRecord)
	// Save writes the full record sequence to the snapshot.
	Save() error
	// Commit appends records and saves as a single serialized write.
	Commit(records ...VectorRecord) error
	// Search returns the texts of the k records most similar to query.
	Search(ctx context.Context, query string, k int) ([]string, error)
	Len() int
}

// KnowledgeWriter accepts text to be embedded and remembered for future retrieval.
type KnowledgeWriter interface {
	Remember(ctx context.Context, text string) error
}
