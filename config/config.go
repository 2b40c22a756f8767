// Package config holds the explicit configuration the pipeline is
// constructed with. Configuration is resolved once at process start; the
// rest of the code never reads the environment.
package config

import (
	"errors"
	"os"
	"time"
)

// Environment variables recognized by Load.
const (
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvRedisURL     = "BLOGSMITH_REDIS_URL"
)

// Sentinel errors for construction-time failures. A run with a missing key
// fails here, before any stage executes a model call.
var (
	ErrMissingOpenAIKey = errors.New("openai api key missing: set " + EnvOpenAIAPIKey)
	ErrMissingGoogleKey = errors.New("google api key missing: set " + EnvGoogleAPIKey)
)

// Config is passed to pipeline construction. Zero-value fields are filled
// with defaults by Load.
type Config struct {
	// Model assignments per stage. The searcher is not model-backed.
	WriterModel    string
	ReviewerModel  string
	PublisherModel string

	// Provider credentials. The writer runs on Gemini; reviewer and
	// publisher run on OpenAI.
	OpenAIAPIKey string
	GoogleAPIKey string

	// RedisURL enables the Redis-backed post store when non-empty;
	// otherwise the in-memory store is used.
	RedisURL string

	// HTTPAddr is the playground listen address.
	HTTPAddr string

	// SearchResults caps the number of articles handed to the writer.
	SearchResults int

	// CacheTTL bounds how long a generated post is reused for its topic.
	CacheTTL time.Duration

	// StageTimeout is the per-stage deadline.
	StageTimeout time.Duration
}

// Default model assignments mirror the workflow's original pairing: an
// OpenAI mini model for review/publish work and a Gemini model for the
// long-form writing.
const (
	DefaultWriterModel    = "gemini-2.0-flash"
	DefaultReviewerModel  = "gpt-4o-mini"
	DefaultPublisherModel = "gpt-4o-mini"
)

// Load builds a Config from the environment and applies defaults.
func Load() Config {
	cfg := Config{
		OpenAIAPIKey: os.Getenv(EnvOpenAIAPIKey),
		GoogleAPIKey: os.Getenv(EnvGoogleAPIKey),
		RedisURL:     os.Getenv(EnvRedisURL),
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.WriterModel == "" {
		c.WriterModel = DefaultWriterModel
	}
	if c.ReviewerModel == "" {
		c.ReviewerModel = DefaultReviewerModel
	}
	if c.PublisherModel == "" {
		c.PublisherModel = DefaultPublisherModel
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":7777"
	}
	if c.SearchResults <= 0 {
		c.SearchResults = 5
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = 2 * time.Minute
	}
}

// Validate fails fast on missing credentials.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return ErrMissingOpenAIKey
	}
	if c.GoogleAPIKey == "" {
		return ErrMissingGoogleKey
	}
	return nil
}
