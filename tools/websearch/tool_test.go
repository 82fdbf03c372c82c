package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"
)

func startSearchServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func resultsHandler(results *searchResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(results)
	}
}

func TestWebSearchReturnsResults(t *testing.T) {
	mockResp := searchResponse{}
	mockResp.Results = []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	}{
		{Title: "Egg prices this week", URL: "https://example.com/eggs", Text: "A dozen large eggs costs $3.49 at most grocers."},
		{Title: "Missing url is dropped", URL: "", Text: "ignored"},
	}
	srv := startSearchServer(t, resultsHandler(&mockResp))
	tool := New(WithBaseURL(srv.URL), WithApiKey("test-key"))
	result, err := tool.Run(context.Background(), NewInput("price of a dozen eggs"))
	if err != nil {
		t.Fatalf("Error running web search: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("Error number of results, expect 1, but got %d", len(result.Results))
	}
	item := result.Results[0]
	if item.Title != "Egg prices this week" {
		t.Errorf("Expect title Egg prices this week, but got %s", item.Title)
	}
	if item.URL != "https://example.com/eggs" {
		t.Errorf("Expect url https://example.com/eggs, but got %s", item.URL)
	}
	if item.Snippet == "" {
		t.Error("Expect a snippet, but got empty")
	}
}

func TestWebSearchRetriesOnce(t *testing.T) {
	var calls int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(&searchResponse{})
	}
	srv := startSearchServer(t, handler)
	tool := New(WithBaseURL(srv.URL))
	if _, err := tool.Run(context.Background(), NewInput("retry query")); err != nil {
		t.Fatalf("Expect retry to succeed, but got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("Expect 2 requests, but got %d", got)
	}
}

func TestWebSearchClientErrorNotRetried(t *testing.T) {
	var calls int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	srv := startSearchServer(t, handler)
	tool := New(WithBaseURL(srv.URL))
	_, err := tool.Run(context.Background(), NewInput("malformed query"))
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("Expect ErrSearchUnavailable, but got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("Expect a client error to be final after 1 request, but got %d", got)
	}
}

func TestWebSearchSnippetKeepsRunesIntact(t *testing.T) {
	mockResp := searchResponse{}
	mockResp.Results = []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	}{
		{Title: "Multibyte text", URL: "https://example.com/cafe", Text: strings.Repeat("é", 400)},
	}
	srv := startSearchServer(t, resultsHandler(&mockResp))
	tool := New(WithBaseURL(srv.URL))
	result, err := tool.Run(context.Background(), NewInput("café breakfast"))
	if err != nil {
		t.Fatalf("Error running web search: %v", err)
	}
	snippet := result.Results[0].Snippet
	if len(snippet) > maxSnippetLength {
		t.Errorf("Expect snippet capped at %d bytes, but got %d", maxSnippetLength, len(snippet))
	}
	if !utf8.ValidString(snippet) {
		t.Error("Expect snippet cut on a rune boundary, but got invalid UTF-8")
	}
}

func TestWebSearchUnavailableAfterRetry(t *testing.T) {
	var calls int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}
	srv := startSearchServer(t, handler)
	tool := New(WithBaseURL(srv.URL))
	_, err := tool.Run(context.Background(), NewInput("always failing query"))
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("Expect ErrSearchUnavailable, but got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("Expect 2 requests, but got %d", got)
	}
}
