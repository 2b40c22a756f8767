package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pakagronglb/blogsmith/observability"
	"github.com/pakagronglb/blogsmith/playground"
	"github.com/pakagronglb/blogsmith/workflow"
)

const playgroundLongDescription = `Serve the playground: a JSON API and websocket stream for pipeline runs,
an HTML preview of generated posts and a Prometheus /metrics endpoint.`

func setupPlaygroundCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playground",
		Short: "Serve the pipeline behind a local HTTP playground",
		Long:  playgroundLongDescription,
		Args:  cobra.NoArgs,
		RunE:  playgroundCommandAction,
	}
	registerConfigFlags(cmd)
	cmd.Flags().String("addr", "", "listen address (default :7777)")
	cmd.Flags().Bool("trace-console", false, "export trace spans to stderr")
	return cmd
}

func playgroundCommandAction(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg := loadConfig(cmd)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}

	consoleExport, _ := cmd.Flags().GetBool("trace-console")
	tracerProvider, err := observability.InitTracing("blogsmith", consoleExport)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	meterProvider, err := observability.InitMetrics("blogsmith")
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	metrics, err := observability.NewPipelineMetrics()
	if err != nil {
		return fmt.Errorf("building pipeline instruments: %w", err)
	}

	opts, store, err := generatorOptions(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)
	opts = append(opts,
		workflow.WithMetrics(metrics),
		workflow.WithTracer(observability.Tracer("workflow")),
	)

	generator, err := workflow.New(cmd.Context(), cfg, opts...)
	if err != nil {
		return err
	}

	srv, err := playground.New(generator, logger, 0)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("playground listening", "addr", cfg.HTTPAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown", "error", err)
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("meter shutdown", "error", err)
		}
	}
	return nil
}
