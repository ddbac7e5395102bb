package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/aimicro-go/internal/config"
	"github.com/54b3r/aimicro-go/internal/logging"
	"github.com/54b3r/aimicro-go/internal/summarize"
)

// NewSummarizeCmd constructs the `aimicro summarize` command, which prints a
// concise summary of its arguments or of stdin.
func NewSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [text|-]",
		Short: "Summarize text from the arguments or stdin",
		Long: `Summarize free text with the configured chat model.

With no arguments, or a single "-", the text is read from stdin. Input longer
than SUMMARY_MAX_INPUT_TOKENS is truncated before it reaches the model.

Examples:
  aimicro summarize "Go is an open source programming language..."
  curl -s https://go.dev/doc/effective_go | aimicro summarize -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			flush := installTracing("aimicro summarize", log)
			defer flush()

			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			settings, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			chatModel, _, err := buildChatModel(ctx, log)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			svc, err := summarize.New(ctx, chatModel, &summarize.Config{
				MaxInputTokens: settings.SummaryMaxInputTokens,
			})
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			summary, err := svc.Summarize(ctx, text)
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}
