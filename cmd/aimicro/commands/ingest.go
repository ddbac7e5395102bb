package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/54b3r/aimicro-go/internal/config"
	"github.com/54b3r/aimicro-go/internal/logging"
)

// NewIngestCmd constructs the `aimicro ingest` command, which runs the
// ingestion pipeline for one PDF and replaces the persisted index.
func NewIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.pdf>",
		Short: "Index a PDF document for question answering",
		Long: `Store a PDF under DATA_DIR/docs, split it into one passage per page, embed
the passages and replace the similarity index with them.

The index is the same one 'aimicro serve' loads at startup, so a server
started afterwards answers questions about this document. A running server
does not see the new index until it restarts.

Environment:
  DATA_DIR             Root for documents and the SQLite index (default: ./data)
  INDEX_BACKEND        sqlite (default) or qdrant
  EMBEDDING_PROVIDER   ollama (default), openai, azure, gemini
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  aimicro ingest ./handbook.pdf
  INDEX_BACKEND=qdrant aimicro ingest ./handbook.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			flush := installTracing("aimicro ingest", log)
			defer flush()

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer f.Close()

			settings, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			stack, err := openIndex(ctx, log, settings)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer stack.Close()

			pipeline, err := buildPipeline(settings, stack)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			res, err := pipeline.Ingest(ctx, filepath.Base(path), f, func(msg string) {
				log.Info(msg)
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("ingestion complete",
				slog.String("document", res.Document.Name),
				slog.Int("pages", res.Pages),
				slog.Int("passages", res.Passages),
				slog.Duration("duration", res.Duration),
			)
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return nil
		},
	}
}
