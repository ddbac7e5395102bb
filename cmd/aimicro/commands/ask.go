package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/aimicro-go/internal/config"
	"github.com/54b3r/aimicro-go/internal/logging"
)

// NewAskCmd constructs the `aimicro ask` command, which answers a question
// from the most recently ingested document without going through the server.
func NewAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the ingested document",
		Long: `Answer a question from the passages of the most recently ingested document.

The index is read from the same place 'aimicro serve' uses, so a document
uploaded through the API or indexed with 'aimicro ingest' can be queried
here. The embedding configuration must match the one the index was built
with.

Examples:
  aimicro ingest ./handbook.pdf
  aimicro ask "How many vacation days do new employees get?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			flush := installTracing("aimicro ask", log)
			defer flush()

			settings, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			chatModel, _, err := buildChatModel(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			stack, err := openIndex(ctx, log, settings)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer stack.Close()

			answerer, err := buildAnswerer(ctx, settings, stack, chatModel)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			answer, err := answerer.Answer(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}
