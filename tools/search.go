// Package tools provides executable capabilities for pipeline stages.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/pakagronglb/blogsmith/agent"
)

// ErrNoResults signals that a search returned nothing usable. A blog-post
// run ends with this error rather than writing from an empty source list.
var ErrNoResults = errors.New("search returned no results")

// defaultEndpoint is the DuckDuckGo instant-answer API.
const defaultEndpoint = "https://api.duckduckgo.com/"

// Article is one search hit handed to the writer stage.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
}

// SearchResults is the artifact produced by the searcher stage.
type SearchResults struct {
	Topic    string    `json:"topic"`
	Articles []Article `json:"articles"`
}

// WebSearch queries the DuckDuckGo instant-answer API. Transport-level
// retries are handled by retryablehttp; a well-formed empty result set is
// not retried here.
type WebSearch struct {
	client     *http.Client
	endpoint   string
	maxResults int
}

var _ agent.Tool = (*WebSearch)(nil)

// WebSearchOption configures a WebSearch tool.
type WebSearchOption func(*WebSearch)

// WithEndpoint overrides the API endpoint. Used by tests.
func WithEndpoint(endpoint string) WebSearchOption {
	return func(w *WebSearch) {
		w.endpoint = endpoint
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) WebSearchOption {
	return func(w *WebSearch) {
		w.client = client
	}
}

// NewWebSearch creates a search tool returning up to maxResults articles.
func NewWebSearch(maxResults int, opts ...WebSearchOption) *WebSearch {
	if maxResults <= 0 {
		maxResults = 5
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.HTTPClient.Timeout = 15 * time.Second
	retryClient.Logger = nil

	w := &WebSearch{
		client:     retryClient.StandardClient(),
		endpoint:   defaultEndpoint,
		maxResults: maxResults,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the tool identifier.
func (w *WebSearch) Name() string {
	return "web_search"
}

// Description returns a human-readable description of the tool.
func (w *WebSearch) Description() string {
	return "Searches the web for articles on a topic and returns title, URL and summary for each hit."
}

// Execute runs a search. Expects params["query"] to be a non-empty string.
func (w *WebSearch) Execute(ctx context.Context, params map[string]interface{}) (*agent.ToolResult, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return nil, errors.New("web_search requires a non-empty 'query' parameter")
	}

	articles, err := w.Search(ctx, query)
	if err != nil {
		return agent.NewToolError(err.Error()), err
	}
	return agent.NewToolResult(articles), nil
}

// Search returns up to maxResults articles for the query.
func (w *WebSearch) Search(ctx context.Context, query string) ([]Article, error) {
	reqURL := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1",
		w.endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	articles := parsed.articles(w.maxResults)
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w for query %q", ErrNoResults, query)
	}
	return articles, nil
}

// instantAnswer mirrors the subset of the DuckDuckGo response we consume.
type instantAnswer struct {
	Heading        string         `json:"Heading"`
	AbstractText   string         `json:"AbstractText"`
	AbstractURL    string         `json:"AbstractURL"`
	AbstractSource string         `json:"AbstractSource"`
	RelatedTopics  []relatedTopic `json:"RelatedTopics"`
}

// relatedTopic entries are either leaf results or named groups of results.
type relatedTopic struct {
	FirstURL string         `json:"FirstURL"`
	Text     string         `json:"Text"`
	Name     string         `json:"Name"`
	Topics   []relatedTopic `json:"Topics"`
}

func (a *instantAnswer) articles(limit int) []Article {
	var out []Article

	if a.AbstractURL != "" && a.AbstractText != "" {
		title := a.Heading
		if title == "" {
			title = a.AbstractSource
		}
		out = append(out, Article{
			Title:   title,
			URL:     a.AbstractURL,
			Summary: a.AbstractText,
		})
	}

	out = appendTopics(out, a.RelatedTopics, limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func appendTopics(out []Article, topics []relatedTopic, limit int) []Article {
	for _, topic := range topics {
		if len(out) >= limit {
			break
		}
		if len(topic.Topics) > 0 {
			out = appendTopics(out, topic.Topics, limit)
			continue
		}
		if topic.FirstURL == "" || topic.Text == "" {
			continue
		}
		out = append(out, Article{
			Title:   topic.Text,
			URL:     topic.FirstURL,
			Summary: topic.Text,
		})
	}
	return out
}
