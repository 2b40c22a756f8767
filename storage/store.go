// Package storage provides topic-keyed persistence for generated blog
// posts. The in-memory store is the default backend; the Redis store is for
// deployments where cached posts must survive restarts or be shared across
// instances.
package storage

import (
	"context"
	"time"
)

// Post is the terminal artifact of one pipeline run.
type Post struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"created_at"`
}

// Store caches finished posts by topic.
type Store interface {
	// Get returns the cached post for a topic. The second return value
	// reports whether a live entry was found.
	Get(ctx context.Context, topic string) (*Post, bool, error)

	// Put caches a post under its topic.
	Put(ctx context.Context, topic string, post *Post) error

	// List returns all cached posts, most recent first.
	List(ctx context.Context) ([]*Post, error)

	// Close releases backend resources.
	Close() error
}
