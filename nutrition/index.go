package nutrition

import (
	"context"
	"errors"
	"fmt"

	"github.com/philippgille/chromem-go"

	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/embedder"
	"github.com/Joelfranklin96/nutrition-copilot/components/vectordb"
	chromemEngine "github.com/Joelfranklin96/nutrition-copilot/components/vectordb/engines/chromem"
)

// ErrIndexUnavailable reports that the retrieval backing store could not be
// opened. It is fatal to the setup phase.
var ErrIndexUnavailable = errors.New("nutrition index unavailable")

const DefaultCollection = "nutrition_db"

// Index is the semantic retrieval index over food documents. Queries are safe
// for concurrent use; Rebuild is an offline, exclusive operation.
type Index struct {
	engine     vectordb.Engine
	embedder   embedder.Embedder
	collection string
}

type IndexOption func(*Index)

func WithCollection(name string) IndexOption {
	return func(x *Index) {
		x.collection = name
	}
}

func NewIndex(engine vectordb.Engine, emb embedder.Embedder, opts ...IndexOption) *Index {
	ret := &Index{
		engine:     engine,
		embedder:   emb,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// OpenPersistent opens the persistent chromem backing store at path.
func OpenPersistent(path string, opts ...vectordb.Option) (vectordb.Engine, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return chromemEngine.New(db, opts...), nil
}

// Rebuild drops the collection and indexes the given documents from scratch.
// The operation is idempotent.
func (x *Index) Rebuild(ctx context.Context, docs []Document) (*components.ApiUsage, error) {
	usage := new(components.ApiUsage)
	if err := x.engine.DropCollection(ctx, x.collection); err != nil {
		return usage, fmt.Errorf("drop collection %s: %w", x.collection, err)
	}
	if len(docs) == 0 {
		return usage, nil
	}
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Text)
	}
	batchUsage := new(components.ApiUsage)
	embeddings, err := x.embedder.BatchEmbed(ctx, parts, batchUsage)
	usage.Merge(batchUsage)
	if err != nil {
		return usage, fmt.Errorf("embed documents: %w", err)
	}
	records := make([]vectordb.Record, 0, len(embeddings))
	for i, e := range embeddings {
		e.Meta = docs[i].Meta
		records = append(records, vectordb.Record{
			ID:        docs[i].ID,
			Embedding: e,
		})
	}
	if err := x.engine.Insert(ctx, x.collection, records...); err != nil {
		return usage, fmt.Errorf("insert documents: %w", err)
	}
	return usage, nil
}

// Query returns up to k documents ranked by semantic similarity descending.
// An empty result is not an error: it means nothing similar enough exists.
func (x *Index) Query(ctx context.Context, text string, k int) ([]Document, *components.ApiUsage, error) {
	usage := new(components.ApiUsage)
	query := new(embedder.Embedding)
	if err := x.embedder.Embed(ctx, text, query, usage); err != nil {
		return nil, usage, fmt.Errorf("embed query: %w", err)
	}
	records, err := x.engine.Search(ctx, query.Embedding,
		vectordb.SearchWithCollection(x.collection),
		vectordb.SearchWithTopK(k),
	)
	if err != nil {
		return nil, usage, fmt.Errorf("search %s: %w", x.collection, err)
	}
	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, Document{
			ID:   rec.ID,
			Text: rec.Embedding.Object,
			Meta: rec.Embedding.Meta,
		})
	}
	return docs, usage, nil
}
