// Package vectordb abstracts vector similarity storage behind a small engine
// interface with in-memory, chromem and milvus implementations.
package vectordb

import (
	"context"

	"github.com/Joelfranklin96/nutrition-copilot/components/embedder"
)

type EngineType string

const (
	Memory  EngineType = "memory"
	Chromem EngineType = "chromem"
	Milvus  EngineType = "milvus"
)

// Engine is the vector store contract. Search results are ranked by
// similarity descending. Collections are dropped and recreated wholesale;
// there are no incremental updates.
type Engine interface {
	DropCollection(ctx context.Context, name string) error
	Insert(ctx context.Context, collection string, records ...Record) error
	Search(ctx context.Context, vectors []float64, opts ...SearchOption) ([]Record, error)
}

// Record represents a single entry in a collection, or a single result from
// a similarity search.
type Record struct {
	// ID is the identifier for the record
	ID string
	// Score is the similarity score for a search result
	Score float64
	// Embedding carries the vector, original text and metadata
	Embedding embedder.Embedding
}
