// Package chromem implements the vectordb engine on top of chromem-go,
// a persistent embedded vector store.
package chromem

import (
	"context"

	"github.com/philippgille/chromem-go"

	"github.com/Joelfranklin96/nutrition-copilot/components/vectordb"
)

type Engine struct {
	db *chromem.DB
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(db *chromem.DB, opts ...vectordb.Option) *Engine {
	ret := &Engine{
		db: db,
	}
	vectordb.WithEngine(vectordb.Chromem)(&ret.Options)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

func (e *Engine) Collection(_ context.Context, name string) (*chromem.Collection, error) {
	return e.db.GetOrCreateCollection(name, nil, nil)
}

func (e *Engine) DropCollection(_ context.Context, name string) error {
	return e.db.DeleteCollection(name)
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	col, err := e.Collection(ctx, collectionName)
	if err != nil {
		return err
	}
	docs := make([]chromem.Document, 0, len(records))
	for _, record := range records {
		var doc chromem.Document
		recordToDocument(&record, &doc)
		docs = append(docs, doc)
	}
	// Insert documents in batches to bound memory use.
	batchSize := 100
	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))
		for _, doc := range docs[i:end] {
			if err := col.AddDocument(ctx, doc); err != nil {
				return err
			}
		}
	}
	return nil
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	var option vectordb.SearchOptions
	for _, opt := range opts {
		opt(&option)
	}
	col, err := e.Collection(ctx, option.Collection)
	if err != nil {
		return nil, err
	}
	topK := option.TopK
	if topK == 0 {
		topK = e.TopK
	}
	// chromem errors when asked for more results than stored documents
	if count := col.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}
	query := vectordb.Float32s(vectors)
	results, err := col.QueryEmbedding(ctx, query, topK, option.Meta, nil)
	if err != nil {
		return nil, err
	}
	searchResults := make([]vectordb.Record, 0, len(results))
	for _, result := range results {
		var rec vectordb.Record
		resultToRecord(&result, &rec)
		if rec.Score < e.MinScore {
			continue
		}
		searchResults = append(searchResults, rec)
	}
	return searchResults, nil
}

func resultToRecord(res *chromem.Result, record *vectordb.Record) {
	record.ID = res.ID
	record.Score = float64(res.Similarity)
	record.Embedding.Object = res.Content
	record.Embedding.Meta = res.Metadata
	record.Embedding.Embedding = vectordb.Float64s(res.Embedding)
}

func recordToDocument(record *vectordb.Record, doc *chromem.Document) {
	if record.ID == "" {
		record.ID = record.Embedding.UUID()
	}
	doc.ID = record.ID
	doc.Content = record.Embedding.Object
	doc.Metadata = record.Embedding.Meta
	doc.Embedding = vectordb.Float32s(record.Embedding.Embedding)
}
