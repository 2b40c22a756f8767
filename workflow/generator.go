package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pakagronglb/blogsmith/agent"
	"github.com/pakagronglb/blogsmith/config"
	"github.com/pakagronglb/blogsmith/llm"
	"github.com/pakagronglb/blogsmith/middleware"
	"github.com/pakagronglb/blogsmith/observability"
	"github.com/pakagronglb/blogsmith/storage"
	"github.com/pakagronglb/blogsmith/tools"
)

// ErrEmptyTopic is returned before any stage executes when the topic is
// blank.
var ErrEmptyTopic = errors.New("topic must not be empty")

// Result is the outcome of one pipeline run.
type Result struct {
	Post   *storage.Post `json:"post"`
	Cached bool          `json:"cached"`
	Stages []StageTrace  `json:"stages,omitempty"`
}

// Generator owns the blog-post pipeline, its post cache and its
// observability hooks. One Generator serves many runs concurrently; runs
// share no mutable state beyond the store.
type Generator struct {
	pipeline *Pipeline
	store    storage.Store
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *observability.PipelineMetrics
}

// Option configures a Generator.
type Option func(*Generator)

// WithStore sets the post cache backend. Defaults to an in-memory store.
func WithStore(store storage.Store) Option {
	return func(g *Generator) {
		g.store = store
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithMetrics sets the pipeline instruments. Nil metrics are a no-op.
func WithMetrics(metrics *observability.PipelineMetrics) Option {
	return func(g *Generator) {
		g.metrics = metrics
	}
}

// WithTracer sets the tracer. Defaults to a no-op tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Generator) {
		g.tracer = tracer
	}
}

// New builds the production pipeline from configuration: searcher (with
// bounded retry), Gemini-backed writer, OpenAI-backed reviewer and
// publisher, each stage under a deadline. Construction fails on missing
// credentials, so a misconfigured process never reaches a model call.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Generator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writerLLM, err := llm.NewGemini(ctx, cfg.GoogleAPIKey, cfg.WriterModel)
	if err != nil {
		return nil, fmt.Errorf("failed to build writer model: %w", err)
	}
	reviewerLLM, err := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.ReviewerModel)
	if err != nil {
		return nil, fmt.Errorf("failed to build reviewer model: %w", err)
	}
	publisherLLM, err := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.PublisherModel)
	if err != nil {
		return nil, fmt.Errorf("failed to build publisher model: %w", err)
	}

	searcher, err := NewSearcher(tools.NewWebSearch(cfg.SearchResults))
	if err != nil {
		return nil, err
	}
	writer, err := NewWriter(writerLLM)
	if err != nil {
		return nil, err
	}
	reviewer, err := NewReviewer(reviewerLLM)
	if err != nil {
		return nil, err
	}
	publisher, err := NewPublisher(publisherLLM)
	if err != nil {
		return nil, err
	}

	// Only the searcher is retried; model stages surface provider errors
	// to the caller unretried.
	stages := []agent.Agent{
		middleware.NewTimeout(middleware.NewRetry(searcher, middleware.DefaultRetryConfig()), cfg.StageTimeout),
		middleware.NewTimeout(writer, cfg.StageTimeout),
		middleware.NewTimeout(reviewer, cfg.StageTimeout),
		middleware.NewTimeout(publisher, cfg.StageTimeout),
	}

	g, err := NewFromStages(stages, opts...)
	if err != nil {
		return nil, err
	}
	if g.store == nil {
		g.store = storage.NewMemoryStore(cfg.CacheTTL)
	}
	return g, nil
}

// NewFromStages builds a Generator over explicit stages. Used by tests and
// callers that assemble their own pipeline.
func NewFromStages(stages []agent.Agent, opts ...Option) (*Generator, error) {
	pipeline, err := NewPipeline("blog-post-generator", stages...)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		pipeline: pipeline,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.tracer == nil {
		g.tracer = noop.NewTracerProvider().Tracer("workflow")
	}
	return g, nil
}

// Store returns the post cache backend, if any.
func (g *Generator) Store() storage.Store {
	return g.store
}

// runConfig holds per-run options.
type runConfig struct {
	useCache bool
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// UseCache controls whether the run may be served from (and written to)
// the post cache. Defaults to true.
func UseCache(use bool) RunOption {
	return func(rc *runConfig) {
		rc.useCache = use
	}
}

// Run executes one pipeline run for the topic. It either returns a post
// with non-empty Markdown or an error; an empty result is never returned
// silently.
func (g *Generator) Run(ctx context.Context, topic string, opts ...RunOption) (*Result, error) {
	return g.run(ctx, topic, RunHooks{}, opts...)
}

func (g *Generator) run(ctx context.Context, topic string, hooks RunHooks, opts ...RunOption) (*Result, error) {
	rc := runConfig{useCache: true}
	for _, opt := range opts {
		opt(&rc)
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	ctx, span := g.tracer.Start(ctx, "workflow.run",
		trace.WithAttributes(attribute.String("topic", topic)))
	defer span.End()

	g.logger.InfoContext(ctx, "generating blog post", "topic", topic, "use_cache", rc.useCache)

	if rc.useCache && g.store != nil {
		post, ok, err := g.store.Get(ctx, topic)
		if err != nil {
			g.logger.WarnContext(ctx, "cache lookup failed", "topic", topic, "error", err)
		} else if ok {
			g.logger.InfoContext(ctx, "serving cached blog post", "topic", topic, "post_id", post.ID)
			g.metrics.RecordCacheHit(ctx)
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return &Result{Post: post, Cached: true}, nil
		}
	}

	var traces []StageTrace
	var stageSpan trace.Span
	wrapped := RunHooks{
		OnStageStart: func(stage string, index int) {
			// Stages run strictly one at a time, so a single span slot
			// is safe here.
			_, stageSpan = g.tracer.Start(ctx, "workflow.stage",
				trace.WithAttributes(
					attribute.String("stage", stage),
					attribute.Int("index", index)))
			g.logger.DebugContext(ctx, "stage started", "stage", stage, "index", index)
			if hooks.OnStageStart != nil {
				hooks.OnStageStart(stage, index)
			}
		},
		OnStageEnd: func(trace StageTrace) {
			if stageSpan != nil {
				stageSpan.End()
				stageSpan = nil
			}
			traces = append(traces, trace)
			g.metrics.RecordStage(ctx, trace.Stage, trace.Duration)
			g.logger.DebugContext(ctx, "stage completed",
				"stage", trace.Stage, "duration", trace.Duration)
			if hooks.OnStageEnd != nil {
				hooks.OnStageEnd(trace)
			}
		},
	}

	final, err := g.pipeline.Run(ctx, agent.NewMessage(agent.RoleUser, topic), wrapped)
	if stageSpan != nil {
		// A failed stage never reaches OnStageEnd.
		if err != nil {
			stageSpan.RecordError(err)
			stageSpan.SetStatus(codes.Error, err.Error())
		}
		stageSpan.End()
		stageSpan = nil
	}
	if err != nil {
		g.metrics.RecordRun(ctx, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.ErrorContext(ctx, "pipeline run failed", "topic", topic, "error", err)
		return nil, err
	}

	markdown := strings.TrimSpace(final.Content)
	if markdown == "" {
		g.metrics.RecordRun(ctx, "error")
		err := fmt.Errorf("pipeline produced no content: %w", ErrEmptyCompletion)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	post := &storage.Post{
		ID:        uuid.NewString(),
		Topic:     topic,
		Title:     extractTitle(markdown, topic),
		Markdown:  markdown,
		CreatedAt: time.Now().UTC(),
	}

	if rc.useCache && g.store != nil {
		if err := g.store.Put(ctx, topic, post); err != nil {
			g.logger.WarnContext(ctx, "failed to cache post", "topic", topic, "error", err)
		}
	}

	g.metrics.RecordRun(ctx, "ok")
	g.logger.InfoContext(ctx, "blog post generated",
		"topic", topic, "post_id", post.ID, "title", post.Title)

	return &Result{Post: post, Stages: traces}, nil
}

// Event types emitted by RunStream.
const (
	EventStageStarted   = "stage_started"
	EventStageCompleted = "stage_completed"
	EventRunCompleted   = "run_completed"
	EventRunFailed      = "run_failed"
)

// Event is one progress notification from a streaming run. The final event
// is always run_completed or run_failed.
type Event struct {
	Type     string        `json:"type"`
	Stage    string        `json:"stage,omitempty"`
	Index    int           `json:"index,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Post     *storage.Post `json:"post,omitempty"`
	Cached   bool          `json:"cached,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// RunStream executes one run and emits stage-boundary events followed by a
// terminal event. The channel is closed after the terminal event.
func (g *Generator) RunStream(ctx context.Context, topic string, opts ...RunOption) <-chan Event {
	events := make(chan Event, 16)

	go func() {
		defer close(events)

		hooks := RunHooks{
			OnStageStart: func(stage string, index int) {
				events <- Event{Type: EventStageStarted, Stage: stage, Index: index}
			},
			OnStageEnd: func(trace StageTrace) {
				events <- Event{
					Type:     EventStageCompleted,
					Stage:    trace.Stage,
					Index:    trace.Index,
					Duration: trace.Duration,
				}
			},
		}

		result, err := g.run(ctx, topic, hooks, opts...)
		if err != nil {
			events <- Event{Type: EventRunFailed, Error: err.Error()}
			return
		}
		events <- Event{Type: EventRunCompleted, Post: result.Post, Cached: result.Cached}
	}()

	return events
}

var titlePattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// extractTitle returns the first level-one heading, falling back to the
// topic when the document has none.
func extractTitle(markdown, fallback string) string {
	if m := titlePattern.FindStringSubmatch(markdown); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return fallback
}
