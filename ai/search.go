package ai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/ericgreene/go-serp"
)

var ErrSearchDisabled = errors.New("web search disabled: SERP_API_KEY not set")

// SearchResult represents a web search result
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// SearchFunc runs one web query
type SearchFunc func(ctx context.Context, query string, maxResults int) ([]SearchResult, error)

type Searcher struct {
	apiKey     string
	maxResults int
	safe       bool
	search     SearchFunc
}

func NewSearcher(cfg config.SearchConfig) *Searcher {
	s := &Searcher{apiKey: cfg.SerpAPIKey, maxResults: cfg.MaxResults, safe: cfg.SafeSearch}
	if s.maxResults <= 0 {
		s.maxResults = 5
	}
	s.search = s.google
	return s
}

// NewSearcherWithFunc is used by tests and alternative backends
func NewSearcherWithFunc(fn SearchFunc, maxResults int) *Searcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Searcher{apiKey: "custom", maxResults: maxResults, search: fn}
}

func (s *Searcher) Enabled() bool {
	return s != nil && s.apiKey != ""
}

func (s *Searcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if !s.Enabled() {
		return nil, ErrSearchDisabled
	}
	return s.SearchN(ctx, query, s.maxResults)
}

func (s *Searcher) SearchN(ctx context.Context, query string, n int) ([]SearchResult, error) {
	if !s.Enabled() {
		return nil, ErrSearchDisabled
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 || n > s.maxResults {
		n = s.maxResults
	}
	return s.search(ctx, query, n)
}

func (s *Searcher) google(_ context.Context, query string, maxResults int) ([]SearchResult, error) {
	parameter := map[string]string{
		"q":   query,
		"key": s.apiKey,
		"num": strconv.Itoa(maxResults),
	}
	if s.safe {
		parameter["safe"] = "active"
	}

	queryResponse := serp.NewGoogleSearch(parameter)
	results, err := queryResponse.GetJSON()
	if err != nil {
		return nil, fmt.Errorf("serp search: %w", err)
	}

	var searchResults []SearchResult
	for _, result := range results.OrganicResults {
		searchResults = append(searchResults, SearchResult{
			Title:   result.Title,
			Snippet: result.Snippet,
			Link:    result.Link,
		})
		if len(searchResults) == maxResults {
			break
		}
	}
	return searchResults, nil
}

// FormatResults renders results as the text handed back to a model
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}
