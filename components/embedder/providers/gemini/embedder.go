package gemini

import (
	"context"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/embedder"
)

type Embedder struct {
	client *gemini.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *gemini.Client, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		client: client,
	}
	embedder.WithProvider(embedder.ProviderGemini)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Embedder) SetClient(clt *gemini.Client) {
	p.client = clt
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.ApiUsage) error {
	model := p.client.EmbeddingModel(p.Model())
	resp, err := model.EmbedContent(ctx, gemini.Text(text))
	if err != nil {
		return err
	}
	if resp.Embedding == nil {
		return nil
	}
	embedding.Object = text
	embedding.Embedding = make([]float64, 0, len(resp.Embedding.Values))
	for _, v := range resp.Embedding.Values {
		embedding.Embedding = append(embedding.Embedding, float64(v))
	}
	embedding.Index = 0
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.ApiUsage) ([]embedder.Embedding, error) {
	model := p.client.EmbeddingModel(p.Model())
	batch := model.NewBatch()
	for _, part := range parts {
		batch.AddContent(gemini.Text(part))
	}
	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	ret := make([]embedder.Embedding, 0, len(resp.Embeddings))
	for idx, v := range resp.Embeddings {
		embeddings := make([]float64, 0, len(v.Values))
		for _, e := range v.Values {
			embeddings = append(embeddings, float64(e))
		}
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: embeddings,
			Index:     idx,
		})
	}
	return ret, nil
}
