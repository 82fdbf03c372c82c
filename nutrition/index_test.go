package nutrition

import (
	"context"
	"strings"
	"testing"

	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/embedder"
	"github.com/Joelfranklin96/nutrition-copilot/components/vectordb"
	memoryEngine "github.com/Joelfranklin96/nutrition-copilot/components/vectordb/engines/memory"
)

// fakeEmbedder maps a handful of known terms onto orthogonal axes so result
// ranking is deterministic. Unknown text embeds to the zero vector, which
// scores below any similarity threshold.
type fakeEmbedder struct{}

var fakeAxes = []string{"tofu", "apple", "oats", "egg"}

func (fakeEmbedder) Provider() embedder.Provider { return "fake" }
func (fakeEmbedder) Model() string               { return "fake-embed-001" }

func (f fakeEmbedder) Embed(_ context.Context, text string, dst *embedder.Embedding, usage *components.ApiUsage) error {
	vec := make([]float64, len(fakeAxes))
	lower := strings.ToLower(text)
	for i, axis := range fakeAxes {
		if strings.Contains(lower, axis) {
			vec[i] = 1
		}
	}
	dst.Object = text
	dst.Embedding = vec
	if usage != nil {
		usage.InputTokens += len(text)
	}
	return nil
}

func (f fakeEmbedder) BatchEmbed(ctx context.Context, parts []string, usage *components.ApiUsage) ([]embedder.Embedding, error) {
	embeddings := make([]embedder.Embedding, len(parts))
	for i, part := range parts {
		if err := f.Embed(ctx, part, &embeddings[i], usage); err != nil {
			return nil, err
		}
		embeddings[i].Index = i
	}
	return embeddings, nil
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	engine, err := memoryEngine.New(vectordb.WithMinScore(0.1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return NewIndex(engine, fakeEmbedder{})
}

func testDocuments() []Document {
	rows := []Row{
		{FoodItem: "Tofu", FoodCategory: "Soy Products", CalsPer100g: "76 cal", KJPer100g: "318 kJ"},
		{FoodItem: "Apple", FoodCategory: "Fruit", CalsPer100g: "52 cal", KJPer100g: "218 kJ"},
		{FoodItem: "Oats", FoodCategory: "Cereal", CalsPer100g: "389 cal", KJPer100g: "1628 kJ"},
		{FoodItem: "Egg", FoodCategory: "Eggs", CalsPer100g: "155 cal", KJPer100g: "649 kJ"},
	}
	return Documents(rows)
}

func TestIndexQueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	if _, err := idx.Rebuild(ctx, testDocuments()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	docs, _, err := idx.Query(ctx, "how many calories in tofu", 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) == 0 || len(docs) > 3 {
		t.Fatalf("Expect between 1 and 3 results, but got %d", len(docs))
	}
	if got := docs[0].FoodItem(); got != "tofu" {
		t.Errorf("Expect top result tofu, but got %s", got)
	}
	if got := docs[0].CaloriesPer100g(); got != 76.0 {
		t.Errorf("Expect 76 calories, but got %g", got)
	}
}

func TestIndexQueryNoMatchIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	if _, err := idx.Rebuild(ctx, testDocuments()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	docs, _, err := idx.Query(ctx, "quantum chromodynamics", 3)
	if err != nil {
		t.Fatalf("Expect no error for unmatched query, but got %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expect empty result, but got %d documents", len(docs))
	}
}

func TestIndexRebuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	docs := testDocuments()
	for i := 0; i < 2; i++ {
		if _, err := idx.Rebuild(ctx, docs); err != nil {
			t.Fatalf("rebuild %d: %v", i, err)
		}
	}
	results, _, err := idx.Query(ctx, "apple", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expect 1 apple document after two rebuilds, but got %d", len(results))
	}
	for _, doc := range results {
		if doc.FoodItem() != "apple" {
			t.Errorf("unexpected result %s", doc.FoodItem())
		}
	}
}
