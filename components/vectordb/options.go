package vectordb

// Options holds engine level defaults.
type Options struct {
	EngineType EngineType // engine implementation in use
	TopK       int        // default maximum number of results to return
	MinScore   float64    // minimum similarity score threshold
	Dimension  int        // vector dimension, must match the embedding model
}

// Option configures an engine following the functional options pattern.
type Option func(*Options)

func WithEngine(engine EngineType) Option {
	return func(c *Options) {
		c.EngineType = engine
	}
}

// WithTopK sets the default maximum number of results to return.
func WithTopK(k int) Option {
	return func(c *Options) {
		c.TopK = k
	}
}

// WithMinScore sets the minimum similarity score threshold. Results scoring
// below the threshold are filtered out.
func WithMinScore(score float64) Option {
	return func(c *Options) {
		c.MinScore = score
	}
}

// WithDimension sets the dimension of stored vectors. This must match the
// embedding model, e.g. 1536 for text-embedding-3-small.
func WithDimension(dimension int) Option {
	return func(c *Options) {
		c.Dimension = dimension
	}
}
