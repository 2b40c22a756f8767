package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleInstantAnswer = `{
	"Heading": "Remote work",
	"AbstractText": "Remote work is the practice of working outside a traditional office.",
	"AbstractURL": "https://en.wikipedia.org/wiki/Remote_work",
	"AbstractSource": "Wikipedia",
	"RelatedTopics": [
		{"FirstURL": "https://example.com/a", "Text": "Telecommuting trends in 2025"},
		{"Name": "Related", "Topics": [
			{"FirstURL": "https://example.com/b", "Text": "Hybrid work policies"},
			{"FirstURL": "https://example.com/c", "Text": "Distributed teams"}
		]},
		{"FirstURL": "", "Text": "entry without url is skipped"}
	]
}`

func newTestSearch(t *testing.T, handler http.HandlerFunc, maxResults int) *WebSearch {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWebSearch(maxResults, WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
}

func TestWebSearchParsesResults(t *testing.T) {
	search := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "benefits of remote work" {
			t.Errorf("unexpected query: %q", got)
		}
		fmt.Fprint(w, sampleInstantAnswer)
	}, 5)

	articles, err := search.Search(context.Background(), "benefits of remote work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(articles) != 4 {
		t.Fatalf("expected 4 articles, got %d", len(articles))
	}
	if articles[0].Title != "Remote work" {
		t.Errorf("expected abstract first, got %q", articles[0].Title)
	}
	if articles[0].URL != "https://en.wikipedia.org/wiki/Remote_work" {
		t.Errorf("unexpected abstract url: %q", articles[0].URL)
	}
	// Nested topic groups are flattened.
	if articles[2].URL != "https://example.com/b" {
		t.Errorf("expected nested topic flattened, got %q", articles[2].URL)
	}
}

func TestWebSearchRespectsLimit(t *testing.T) {
	search := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleInstantAnswer)
	}, 2)

	articles, err := search.Search(context.Background(), "remote work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("expected limit of 2 articles, got %d", len(articles))
	}
}

func TestWebSearchNoResults(t *testing.T) {
	search := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"RelatedTopics": []}`)
	}, 5)

	_, err := search.Search(context.Background(), "gibberish topic")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestWebSearchServerError(t *testing.T) {
	search := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}, 5)

	_, err := search.Search(context.Background(), "remote work")
	if err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestWebSearchExecute(t *testing.T) {
	search := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleInstantAnswer)
	}, 5)

	result, err := search.Execute(context.Background(), map[string]interface{}{"query": "remote work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected successful tool result")
	}

	if _, err := search.Execute(context.Background(), map[string]interface{}{}); err == nil {
		t.Error("expected error for missing query parameter")
	}
}
