package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists posts in Redis with a key prefix and TTL.
//
// Data layout:
//   - "{prefix}:post:{topic}" -> JSON(Post), with TTL
//   - "{prefix}:topics"       -> sorted set of topics scored by creation time
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store from a connection URL
// (e.g. "redis://localhost:6379/0"). A non-positive ttl means no expiry.
func NewRedisStore(redisURL, keyPrefix string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if keyPrefix == "" {
		keyPrefix = "blogsmith"
	}
	return &RedisStore{
		client:    redis.NewClient(opts),
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}, nil
}

func (s *RedisStore) postKey(topic string) string {
	return fmt.Sprintf("%s:post:%s", s.keyPrefix, topic)
}

func (s *RedisStore) topicsKey() string {
	return fmt.Sprintf("%s:topics", s.keyPrefix)
}

// Get returns the cached post for a topic.
func (s *RedisStore) Get(ctx context.Context, topic string) (*Post, bool, error) {
	data, err := s.client.Get(ctx, s.postKey(topic)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var post Post
	if err := json.Unmarshal([]byte(data), &post); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached post: %w", err)
	}
	return &post, true, nil
}

// Put caches a post under its topic and indexes the topic.
func (s *RedisStore) Put(ctx context.Context, topic string, post *Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to encode post: %w", err)
	}

	if err := s.client.Set(ctx, s.postKey(topic), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	err = s.client.ZAdd(ctx, s.topicsKey(), redis.Z{
		Score:  float64(post.CreatedAt.UnixNano()),
		Member: topic,
	}).Err()
	if err != nil {
		return fmt.Errorf("redis zadd failed: %w", err)
	}
	return nil
}

// List returns all cached posts, most recent first. Topics whose post has
// expired are removed from the index.
func (s *RedisStore) List(ctx context.Context) ([]*Post, error) {
	topics, err := s.client.ZRevRange(ctx, s.topicsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange failed: %w", err)
	}

	posts := make([]*Post, 0, len(topics))
	for _, topic := range topics {
		post, ok, err := s.Get(ctx, topic)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.client.ZRem(ctx, s.topicsKey(), topic)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
