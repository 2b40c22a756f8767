// Package playground hosts the blog-post workflow behind a local HTTP
// harness: a JSON API for runs, websocket streaming of stage events, an
// HTML preview of generated posts and a Prometheus metrics endpoint.
package playground

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pakagronglb/blogsmith/storage"
	"github.com/pakagronglb/blogsmith/workflow"
)

// runRegistry keeps finished runs addressable by post ID for the duration
// of the process. The topic-keyed store remains the cache of record.
type runRegistry struct {
	mu    sync.RWMutex
	posts map[string]*storage.Post
}

func newRunRegistry() *runRegistry {
	return &runRegistry{posts: make(map[string]*storage.Post)}
}

func (r *runRegistry) add(post *storage.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
}

func (r *runRegistry) get(id string) (*storage.Post, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	return post, ok
}

// Server serves the playground API around a generator.
type Server struct {
	generator *workflow.Generator
	logger    *slog.Logger
	registry  *runRegistry
	markdown  goldmark.Markdown
	runLimit  time.Duration
}

// New creates a playground server. runLimit bounds a single run end to end;
// a non-positive value defaults to 10 minutes.
func New(generator *workflow.Generator, logger *slog.Logger, runLimit time.Duration) (*Server, error) {
	if generator == nil {
		return nil, errors.New("playground requires a generator")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if runLimit <= 0 {
		runLimit = 10 * time.Minute
	}
	return &Server{
		generator: generator,
		logger:    logger,
		registry:  newRunRegistry(),
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		runLimit:  runLimit,
	}, nil
}

// Routes returns the playground handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/runs", s.handleRunCreate)
	mux.HandleFunc("GET /api/runs", s.handleRunList)
	mux.HandleFunc("GET /api/runs/{id}", s.handleRunGet)
	mux.HandleFunc("GET /api/runs/{id}/preview", s.handleRunPreview)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", s.handleIndex)
	return s.logMiddleware(mux)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type runRequest struct {
	Topic    string `json:"topic"`
	UseCache *bool  `json:"use_cache,omitempty"`
}

type runResponse struct {
	RunID    string                `json:"run_id"`
	Topic    string                `json:"topic"`
	Title    string                `json:"title"`
	Markdown string                `json:"markdown"`
	Cached   bool                  `json:"cached"`
	Stages   []workflow.StageTrace `json:"stages,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRunCreate(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runLimit)
	defer cancel()

	result, err := s.generator.Run(ctx, req.Topic, runOptions(req)...)
	if err != nil {
		if errors.Is(err, workflow.ErrEmptyTopic) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}

	s.registry.add(result.Post)
	writeJSON(w, http.StatusOK, runResponse{
		RunID:    result.Post.ID,
		Topic:    result.Post.Topic,
		Title:    result.Post.Title,
		Markdown: result.Post.Markdown,
		Cached:   result.Cached,
		Stages:   result.Stages,
	})
}

func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	store := s.generator.Store()
	if store == nil {
		writeJSON(w, http.StatusOK, []*storage.Post{})
		return
	}
	posts, err := store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	post, ok := s.registry.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleRunPreview(w http.ResponseWriter, r *http.Request) {
	post, ok := s.registry.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.markdown.Convert([]byte(post.Markdown), w); err != nil {
		s.logger.Error("markdown rendering failed", "post_id", post.ID, "error", err)
	}
}

func runOptions(req runRequest) []workflow.RunOption {
	if req.UseCache == nil {
		return nil
	}
	return []workflow.RunOption{workflow.UseCache(*req.UseCache)}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
