package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pakagronglb/blogsmith/workflow"
)

const generateLongDescription = `Run the full pipeline once for a topic: web research, drafting, editorial
review and publishing polish. Prints the final Markdown to stdout, or writes
it to a file with --out.`

func setupGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a blog post for a topic",
		Long:  generateLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  generateCommandAction,
	}
	registerConfigFlags(cmd)
	cmd.Flags().Bool("no-cache", false, "skip the post cache and force a fresh run")
	cmd.Flags().String("out", "", "write the post to a file instead of stdout")
	return cmd
}

func generateCommandAction(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	logger := newLogger(cmd)
	cfg := loadConfig(cmd)

	opts, store, err := generatorOptions(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)

	generator, err := workflow.New(cmd.Context(), cfg, opts...)
	if err != nil {
		return err
	}

	var runOpts []workflow.RunOption
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		runOpts = append(runOpts, workflow.UseCache(false))
	}

	result, err := generator.Run(cmd.Context(), topic, runOpts...)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if result.Cached {
		logger.Info("serving cached post", "topic", result.Post.Topic, "created_at", result.Post.CreatedAt)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Post.Markdown)
		return nil
	}
	if err := os.WriteFile(out, []byte(result.Post.Markdown), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info("post written", "path", out, "title", result.Post.Title)
	return nil
}
