// Package websearch provides a web search tool backed by the Exa search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Joelfranklin96/nutrition-copilot/tools"
)

// ErrSearchUnavailable indicates the search backend could not be reached or
// returned an unusable response after retrying.
var ErrSearchUnavailable = errors.New("web search unavailable")

const (
	DefaultBaseURL = "https://api.exa.ai"
	DefaultTimeout = 30 * time.Second

	// maxSnippetLength caps the excerpt carried into prompts.
	maxSnippetLength = 500
)

// Input Schema for input to a tool for searching the web for current
// information such as ingredient lists and prices.
type Input struct {
	// Query the search query.
	Query string `json:"query" jsonschema:"title=query,description=The search query." validate:"required"`
	// NumResults number of results to return.
	NumResults int `json:"num_results,omitempty" jsonschema:"title=num_results,description=Number of results to return.,default=5"`
}

func NewInput(query string) *Input {
	return &Input{Query: query}
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// SearchResultItem represents a single web search result.
type SearchResultItem struct {
	// Title the title of the search result.
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result."`
	// URL the URL of the search result.
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result." validate:"required,url"`
	// Snippet a short text excerpt from the result page.
	Snippet string `json:"snippet,omitempty" jsonschema:"title=snippet,description=A short text excerpt from the result page."`
}

func (s SearchResultItem) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Output represents the output of the web search tool.
type Output struct {
	// Results list of search result items.
	Results []SearchResultItem `json:"results,omitempty" jsonschema:"title=results,description=List of search result items."`
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// searchRequest is the Exa search API request body.
type searchRequest struct {
	Query      string         `json:"query"`
	NumResults int            `json:"numResults,omitempty"`
	Contents   searchContents `json:"contents"`
}

type searchContents struct {
	Text bool `json:"text"`
}

// searchResponse is the Exa search API response body.
type searchResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	} `json:"results"`
}

type Config struct {
	tools.Config
	baseURL    string
	apiKey     string
	numResults int
	timeout    time.Duration
	httpClient *http.Client
}

// Tool searches the web through the Exa search API. Transient failures are
// retried once before the search is reported unavailable.
type Tool struct {
	Config
}

// statusError is a non-OK response from the search API.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("non-200 response from search engine: %d", e.code)
}

// retryable reports whether a failed request is worth one more attempt.
// Client errors are final; rate limits and server errors are not.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}
	return true
}

func New(opts ...Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("WebSearchTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Search the web for current information.")
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.numResults == 0 {
		ret.numResults = 5
	}
	if ret.timeout == 0 {
		ret.timeout = DefaultTimeout
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: ret.timeout}
	}
	return ret
}

// Run executes the search with one retry on transient failure.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	numResults := input.NumResults
	if numResults <= 0 {
		numResults = t.numResults
	}
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		items, err := t.fetchSearchResults(ctx, input.Query, numResults)
		if err == nil {
			return &Output{Results: items}, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, lastErr)
}

// fetchSearchResults queries the search API and returns the parsed results.
func (t *Tool) fetchSearchResults(ctx context.Context, query string, numResults int) ([]SearchResultItem, error) {
	body := searchRequest{
		Query:      query,
		NumResults: numResults,
		Contents:   searchContents{Text: true},
	}
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&body); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		httpReq.Header.Set("x-api-key", t.apiKey)
	}
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying search engine: %v", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, &statusError{code: httpResp.StatusCode}
	}

	var searchResp searchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResp); err != nil {
		return nil, err
	}
	items := make([]SearchResultItem, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		if r.URL == "" {
			continue
		}
		snippet := tools.Truncate(r.Text, maxSnippetLength)
		items = append(items, SearchResultItem{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: snippet,
		})
	}
	return items, nil
}
