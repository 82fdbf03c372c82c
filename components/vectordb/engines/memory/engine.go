// Package memory implements the vectordb engine in process memory. It is the
// engine of choice for tests and small corpora.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/Joelfranklin96/nutrition-copilot/components/vectordb"
)

// Engine provides thread-safe collections with brute-force cosine search.
type Engine struct {
	collections *sync.Map
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

// Collection is a named set of records.
type Collection struct {
	records []vectordb.Record
	mu      sync.RWMutex
}

func (c *Collection) AddRecords(records ...vectordb.Record) {
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()
}

func (c *Collection) Records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]vectordb.Record, len(c.records))
	copy(out, c.records)
	return out
}

// New creates a new in-memory vector database instance.
func New(opts ...vectordb.Option) (*Engine, error) {
	ret := &Engine{
		collections: new(sync.Map),
	}
	vectordb.WithEngine(vectordb.Memory)(&ret.Options)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret, nil
}

func (e *Engine) Collection(_ context.Context, name string) (*Collection, error) {
	col, _ := e.collections.LoadOrStore(name, new(Collection))
	return col.(*Collection), nil
}

func (e *Engine) HasCollection(name string) (bool, error) {
	_, exists := e.collections.Load(name)
	return exists, nil
}

func (e *Engine) DropCollection(_ context.Context, name string) error {
	e.collections.Delete(name)
	return nil
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	col, err := e.Collection(ctx, collectionName)
	if err != nil {
		return err
	}
	docs := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		docs = append(docs, record)
	}
	col.AddRecords(docs...)
	return nil
}

func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	var option vectordb.SearchOptions
	for _, opt := range opts {
		opt(&option)
	}
	col, err := e.Collection(ctx, option.Collection)
	if err != nil {
		return nil, err
	}
	records := filterRecords(col.Records(), &option)
	scored := records[:0]
	for _, record := range records {
		record.Score = cosineSimilarity(vectors, record.Embedding.Embedding)
		if record.Score < e.MinScore {
			continue
		}
		scored = append(scored, record)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	topK := option.TopK
	if topK == 0 {
		topK = e.TopK
	}
	if topK == 0 || topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func filterRecords(docs []vectordb.Record, opts *vectordb.SearchOptions) []vectordb.Record {
	if len(opts.Meta) == 0 {
		return docs
	}
	filtered := make([]vectordb.Record, 0, len(docs))
	for _, doc := range docs {
		if recordMatchesMeta(&doc, opts.Meta) {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}

// recordMatchesMeta reports whether the record metadata carries every
// key/value pair of the filter.
func recordMatchesMeta(record *vectordb.Record, meta map[string]string) bool {
	for k, v := range meta {
		if record.Embedding.Meta[k] != v {
			return false
		}
	}
	return true
}

// cosineSimilarity returns a similarity in [-1, 1], larger meaning more
// similar, matching the ranking direction of the chromem engine.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
