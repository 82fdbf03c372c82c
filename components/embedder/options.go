package embedder

// Options holds the configuration shared by Embedder implementations.
type Options struct {
	// provider specifies the embedding service in use
	provider Provider
	// model specifies the embedding model
	model string
}

// Option configures an Embedder following the functional options pattern.
type Option func(*Options)

func WithProvider(provider Provider) Option {
	return func(o *Options) {
		o.provider = provider
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.model = model
	}
}

func (i Options) Provider() Provider {
	return i.provider
}

func (i Options) Model() string {
	return i.model
}
