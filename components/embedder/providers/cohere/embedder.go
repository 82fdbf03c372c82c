package cohere

import (
	"context"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/Joelfranklin96/nutrition-copilot/components"
	"github.com/Joelfranklin96/nutrition-copilot/components/embedder"
)

type Embedder struct {
	client *cohereClient.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client *cohereClient.Client, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		client: client,
	}
	embedder.WithProvider(embedder.ProviderCohere)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Embedder) SetClient(clt *cohereClient.Client) {
	p.client = clt
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.ApiUsage) error {
	ret, err := p.BatchEmbed(ctx, []string{text}, usage)
	if err != nil {
		return err
	}
	if len(ret) == 0 {
		return nil
	}
	*embedding = ret[0]
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.ApiUsage) ([]embedder.Embedding, error) {
	model := p.Model()
	req := cohere.EmbedRequest{
		Texts: parts,
		Model: &model,
	}
	resp, err := p.client.Embed(ctx, &req)
	if err != nil {
		return nil, err
	}
	respV := resp.GetEmbeddingsFloats()
	if respV == nil {
		return nil, nil
	}
	if usage != nil && respV.Meta != nil && respV.Meta.Tokens != nil {
		if v := respV.Meta.Tokens.InputTokens; v != nil {
			usage.InputTokens = int(*v)
		}
		if v := respV.Meta.Tokens.OutputTokens; v != nil {
			usage.OutputTokens = int(*v)
		}
	}
	ret := make([]embedder.Embedding, 0, len(respV.Embeddings))
	for idx, vec := range respV.Embeddings {
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: vec,
			Index:     idx,
		})
	}
	return ret, nil
}
