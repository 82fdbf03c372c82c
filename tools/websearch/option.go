package websearch

import (
	"net/http"
	"time"
)

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithApiKey(key string) Option {
	return func(c *Config) {
		c.apiKey = key
	}
}

func WithNumResults(n int) Option {
	return func(c *Config) {
		c.numResults = n
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.timeout = d
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}
