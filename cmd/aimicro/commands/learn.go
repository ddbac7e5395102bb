package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/aimicro-go/internal/learnpath"
	"github.com/54b3r/aimicro-go/internal/logging"
)

// NewLearnCmd constructs the `aimicro learn` command, which prints a Markdown
// learning path for a topic.
func NewLearnCmd() *cobra.Command {
	var topic string
	var level string

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Generate a learning path for a topic",
		Long: fmt.Sprintf(`Generate a step-by-step Markdown learning path for a topic.

The level is free-form; the interactive client offers %s.

Examples:
  aimicro learn --topic "Kubernetes operators"
  aimicro learn --topic Rust --level Advanced`, strings.Join(learnpath.Levels, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			flush := installTracing("aimicro learn", log)
			defer flush()

			chatModel, _, err := buildChatModel(ctx, log)
			if err != nil {
				return fmt.Errorf("learn: %w", err)
			}

			svc, err := learnpath.New(ctx, chatModel)
			if err != nil {
				return fmt.Errorf("learn: %w", err)
			}

			path, err := svc.Generate(ctx, topic, level)
			if err != nil {
				return fmt.Errorf("learn: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic to learn (required)")
	cmd.Flags().StringVarP(&level, "level", "l", learnpath.DefaultLevel, "Proficiency level")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}
