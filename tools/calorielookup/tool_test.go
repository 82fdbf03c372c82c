package calorielookup

import (
	"context"
	"strings"
	"testing"

	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/embedder"
	"github.com/Joelfranklin96/nutrition-copilot/components/vectordb"
	memoryEngine "github.com/Joelfranklin96/nutrition-copilot/components/vectordb/engines/memory"
	"github.com/Joelfranklin96/nutrition-copilot/nutrition"
)

type fakeEmbedder struct{}

var fakeAxes = []string{"tofu", "apple", "oats"}

func (fakeEmbedder) Provider() embedder.Provider { return "fake" }
func (fakeEmbedder) Model() string               { return "fake-embed-001" }

func (f fakeEmbedder) Embed(_ context.Context, text string, dst *embedder.Embedding, _ *components.ApiUsage) error {
	vec := make([]float64, len(fakeAxes))
	lower := strings.ToLower(text)
	for i, axis := range fakeAxes {
		if strings.Contains(lower, axis) {
			vec[i] = 1
		}
	}
	dst.Object = text
	dst.Embedding = vec
	return nil
}

func (f fakeEmbedder) BatchEmbed(ctx context.Context, parts []string, usage *components.ApiUsage) ([]embedder.Embedding, error) {
	embeddings := make([]embedder.Embedding, len(parts))
	for i, part := range parts {
		if err := f.Embed(ctx, part, &embeddings[i], usage); err != nil {
			return nil, err
		}
	}
	return embeddings, nil
}

func newTestTool(t *testing.T) *Tool {
	t.Helper()
	engine, err := memoryEngine.New(vectordb.WithMinScore(0.1))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	idx := nutrition.NewIndex(engine, fakeEmbedder{})
	rows := []nutrition.Row{
		{FoodItem: "Tofu", FoodCategory: "Soy Products", CalsPer100g: "76 cal", KJPer100g: "318 kJ"},
		{FoodItem: "Apple", FoodCategory: "Fruit", CalsPer100g: "52 cal", KJPer100g: "218 kJ"},
		{FoodItem: "Oats", FoodCategory: "Cereal", CalsPer100g: "389 cal", KJPer100g: "1628 kJ"},
	}
	if _, err := idx.Rebuild(context.Background(), nutrition.Documents(rows)); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	return New(idx)
}

func TestCalorieLookupFound(t *testing.T) {
	tool := newTestTool(t)
	out, err := tool.Run(context.Background(), NewInput("calories in tofu"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.Found() {
		t.Fatal("Expect a match, but got none")
	}
	if got := out.Matches[0].FoodItem; got != "tofu" {
		t.Errorf("Expect top match tofu, but got %s", got)
	}
	if !strings.HasPrefix(out.Summary, "Nutrition Information:\n") {
		t.Errorf("Expect the summary header, but got:\n%s", out.Summary)
	}
	// display names are title-cased, matches keep the stored form
	if !strings.Contains(out.Summary, "Tofu (Soy Products): 76 calories per 100g") {
		t.Errorf("unexpected summary:\n%s", out.Summary)
	}
}

func TestCalorieLookupNotFound(t *testing.T) {
	tool := newTestTool(t)
	out, err := tool.Run(context.Background(), NewInput("dragonfruit smoothie"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Found() {
		t.Fatalf("Expect no matches, but got %d", len(out.Matches))
	}
	if out.Summary != "No nutrition information found for: dragonfruit smoothie" {
		t.Errorf("unexpected sentinel summary: %s", out.Summary)
	}
}

func TestCalorieLookupCapsResults(t *testing.T) {
	tool := newTestTool(t)
	out, err := tool.Run(context.Background(), &Input{Query: "tofu apple oats breakfast", MaxResults: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Matches) > 3 {
		t.Errorf("Expect at most 3 matches, but got %d", len(out.Matches))
	}
}
