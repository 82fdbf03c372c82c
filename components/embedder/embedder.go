// Package embedder turns text into vector embeddings for similarity search.
package embedder

import (
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Joelfranklin96/nutrition-copilot/components"
)

// Embedder is the embedding provider contract.
type Embedder interface {
	Provider() Provider
	Model() string
	Embed(context.Context, string, *Embedding, *components.ApiUsage) error
	BatchEmbed(ctx context.Context, parts []string, usage *components.ApiUsage) ([]Embedding, error)
}

// Provider identifies an embedding service.
type Provider = string

const (
	ProviderOpenAI Provider = "OpenAI"
	ProviderCohere Provider = "Cohere"
	ProviderGemini Provider = "Gemini"
)

// Embedding is a vector representation of a piece of text. The distance
// between two embeddings in the vector space is correlated with the semantic
// similarity of the two texts.
type Embedding struct {
	Object    string            `json:"object"`
	Embedding []float64         `json:"embedding"`
	Index     int               `json:"index"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// UUID derives a stable identifier from the embedded text and metadata.
func (e Embedding) UUID() string {
	sb := new(bytes.Buffer)
	sb.WriteString(e.Object)
	for k, v := range e.Meta {
		sb.WriteString(k + ":" + v)
		sb.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, sb.Bytes()).String()
}

// DotProduct calculates the dot product of the embedding vector with another
// embedding vector. Both vectors must have the same length.
func (e *Embedding) DotProduct(other *Embedding) (float64, error) {
	if len(e.Embedding) != len(other.Embedding) {
		return 0, errors.New("vector length mismatch")
	}
	var dotProduct float64
	for i := range e.Embedding {
		dotProduct += e.Embedding[i] * other.Embedding[i]
	}
	return dotProduct, nil
}
