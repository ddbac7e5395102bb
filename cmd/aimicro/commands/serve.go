package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/54b3r/aimicro-go/internal/config"
	"github.com/54b3r/aimicro-go/internal/learnpath"
	"github.com/54b3r/aimicro-go/internal/logging"
	"github.com/54b3r/aimicro-go/internal/server"
	"github.com/54b3r/aimicro-go/internal/summarize"
)

// startupCheckTimeout bounds the dependency probe run before listening.
const startupCheckTimeout = 10 * time.Second

// NewServeCmd constructs the `aimicro serve` command, which starts the HTTP
// API in front of the summarization, document Q&A and learning-path services.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the aimicro HTTP API",
		Long: `Start the aimicro HTTP API.

Endpoints:
  POST /api/summarize               {text}          -> {summary}
  POST /api/upload-document         multipart file  -> {message}
  POST /api/ask-document            {query}         -> {answer}
  POST /api/generate-learning-path  {topic, level}  -> {learning_path}
  GET  /api/health, /api/ready, /metrics

An index left by a previous run (or by 'aimicro ingest') is loaded at
startup, so questions can be answered before the first upload.

Examples:
  aimicro serve
  aimicro serve --port 9090
  INDEX_BACKEND=qdrant aimicro serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.FromContext(ctx)

			flush := installTracing("aimicro serve", log)
			defer flush()

			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("SERVER_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("SERVER_PORT", port)
			}

			settings, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			chatModel, providerCfg, err := buildChatModel(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			stack, err := openIndex(ctx, log, settings)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() {
				if err := stack.Close(); err != nil {
					log.Warn("serve: close index", slog.Any("error", err))
				}
			}()

			pipeline, err := buildPipeline(settings, stack)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			answerer, err := buildAnswerer(ctx, settings, stack, chatModel)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			summarizer, err := summarize.New(ctx, chatModel, &summarize.Config{
				MaxInputTokens: settings.SummaryMaxInputTokens,
			})
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			paths, err := learnpath.New(ctx, chatModel)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			pingers := buildPingers(chatModel, providerCfg, stack)
			checkDependencies(ctx, log, server.NewMultiPinger(pingers...))

			srv, err := server.New(&server.Services{
				Summarizer: summarizer,
				Ingester:   pipeline,
				Answerer:   answerer,
				Paths:      paths,
			}, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				Index:   stack.slot,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			log.Info("serve starting",
				slog.String("provider", string(providerCfg.Backend)),
				slog.String("index_backend", settings.IndexBackend),
				slog.Bool("index_ready", stack.slot.Ready()),
			)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to (env: SERVER_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on (env: SERVER_PORT)")

	return cmd
}

// checkDependencies probes every dependency once before the server starts.
// Failures are logged, not fatal: /api/ready keeps reporting them.
func checkDependencies(ctx context.Context, log *slog.Logger, p server.Pinger) {
	ctx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		log.Warn("serve: dependency check failed", slog.Any("error", err))
		return
	}
	log.Info("serve: dependencies reachable")
}
