// Package cmd wires the blogsmith command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pakagronglb/blogsmith/config"
	"github.com/pakagronglb/blogsmith/observability"
	"github.com/pakagronglb/blogsmith/storage"
	"github.com/pakagronglb/blogsmith/workflow"
)

// RootCmd creates and returns the root command for blogsmith.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "blogsmith",
		Short:        "blogsmith - Research, draft, review and publish blog posts with a multi-agent pipeline",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		setupGenerateCommand(),
		setupPlaygroundCommand(),
		setupVersionCommand(),
	)
	return rootCmd
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return observability.NewLogger(level)
}

// loadConfig resolves configuration from the environment and applies flag
// overrides registered by registerConfigFlags.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()

	if v, _ := cmd.Flags().GetString("writer-model"); v != "" {
		cfg.WriterModel = v
	}
	if v, _ := cmd.Flags().GetString("reviewer-model"); v != "" {
		cfg.ReviewerModel = v
	}
	if v, _ := cmd.Flags().GetString("publisher-model"); v != "" {
		cfg.PublisherModel = v
	}
	if v, _ := cmd.Flags().GetString("redis-url"); v != "" {
		cfg.RedisURL = v
	}
	if v, _ := cmd.Flags().GetInt("search-results"); v > 0 {
		cfg.SearchResults = v
	}
	if v, _ := cmd.Flags().GetDuration("stage-timeout"); v > 0 {
		cfg.StageTimeout = v
	}
	if v, _ := cmd.Flags().GetDuration("cache-ttl"); v > 0 {
		cfg.CacheTTL = v
	}
	return cfg
}

func registerConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("writer-model", "", "Gemini model for the writer stage")
	cmd.Flags().String("reviewer-model", "", "OpenAI model for the reviewer stage")
	cmd.Flags().String("publisher-model", "", "OpenAI model for the publisher stage")
	cmd.Flags().String("redis-url", "", "Redis URL for the post cache (default: in-memory)")
	cmd.Flags().Int("search-results", 0, "maximum articles passed to the writer")
	cmd.Flags().Duration("stage-timeout", 0, "per-stage deadline")
	cmd.Flags().Duration("cache-ttl", 0, "how long a generated post is reused for its topic")
}

// newStore builds the configured post cache backend.
func newStore(cfg config.Config) (storage.Store, error) {
	if cfg.RedisURL == "" {
		return storage.NewMemoryStore(cfg.CacheTTL), nil
	}
	store, err := storage.NewRedisStore(cfg.RedisURL, "blogsmith", cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to open redis store: %w", err)
	}
	return store, nil
}

func generatorOptions(cfg config.Config, logger *slog.Logger) ([]workflow.Option, storage.Store, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []workflow.Option{
		workflow.WithStore(store),
		workflow.WithLogger(logger),
	}
	return opts, store, nil
}

func closeStore(store storage.Store, logger *slog.Logger) {
	if err := store.Close(); err != nil {
		logger.Warn("closing post store", "error", err)
	}
}
