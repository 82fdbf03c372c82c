package memory

import (
	"context"
	"testing"

	"github.com/Joelfranklin96/nutrition-copilot/components/embedder"
	"github.com/Joelfranklin96/nutrition-copilot/components/vectordb"
)

func newRecord(id, text string, vec []float64, meta map[string]string) vectordb.Record {
	return vectordb.Record{
		ID: id,
		Embedding: embedder.Embedding{
			Object:    text,
			Embedding: vec,
			Meta:      meta,
		},
	}
}

func TestSearchRanksBySimilarityDescending(t *testing.T) {
	ctx := context.Background()
	engine, err := New(vectordb.WithTopK(3))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	records := []vectordb.Record{
		newRecord("tofu", "tofu", []float64{1, 0, 0}, nil),
		newRecord("bacon", "bacon", []float64{0, 1, 0}, nil),
		newRecord("tempeh", "tempeh", []float64{0.9, 0.1, 0}, nil),
	}
	if err := engine.Insert(ctx, "foods", records...); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	results, err := engine.Search(ctx, []float64{1, 0, 0}, vectordb.SearchWithCollection("foods"))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expect 3 results, but got %d", len(results))
	}
	if results[0].ID != "tofu" || results[1].ID != "tempeh" {
		t.Errorf("Expect tofu then tempeh, but got %s then %s", results[0].ID, results[1].ID)
	}
	if results[0].Score < results[1].Score || results[1].Score < results[2].Score {
		t.Error("Expect scores in descending order")
	}
}

func TestSearchTopKBound(t *testing.T) {
	ctx := context.Background()
	engine, _ := New()
	for i, vec := range [][]float64{{1, 0}, {0.8, 0.2}, {0.5, 0.5}, {0, 1}} {
		engine.Insert(ctx, "foods", newRecord("", string(rune('a'+i)), vec, nil))
	}
	results, err := engine.Search(ctx, []float64{1, 0},
		vectordb.SearchWithCollection("foods"), vectordb.SearchWithTopK(2))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expect 2 results, but got %d", len(results))
	}
}

func TestSearchMetaFilter(t *testing.T) {
	ctx := context.Background()
	engine, _ := New(vectordb.WithTopK(10))
	engine.Insert(ctx, "foods",
		newRecord("a", "tofu", []float64{1, 0}, map[string]string{"food_category": "soy products"}),
		newRecord("b", "cheddar", []float64{1, 0}, map[string]string{"food_category": "cheese"}),
	)
	results, err := engine.Search(ctx, []float64{1, 0},
		vectordb.SearchWithCollection("foods"),
		vectordb.SearchWithMeta(map[string]string{"food_category": "cheese"}))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "b" {
		t.Fatalf("Expect only the cheese record, but got %+v", results)
	}
}

func TestDropCollection(t *testing.T) {
	ctx := context.Background()
	engine, _ := New(vectordb.WithTopK(10))
	engine.Insert(ctx, "foods", newRecord("a", "tofu", []float64{1, 0}, nil))
	if err := engine.DropCollection(ctx, "foods"); err != nil {
		t.Fatalf("DropCollection failed: %v", err)
	}
	results, err := engine.Search(ctx, []float64{1, 0}, vectordb.SearchWithCollection("foods"))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expect empty collection after drop, but got %d results", len(results))
	}
}
