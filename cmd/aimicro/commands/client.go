package commands

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/54b3r/aimicro-go/internal/client"
	"github.com/54b3r/aimicro-go/internal/logging"
	"github.com/54b3r/aimicro-go/internal/tui"
)

// NewClientCmd constructs the `aimicro client` command, which opens the
// interactive terminal client against a running `aimicro serve`.
func NewClientCmd() *cobra.Command {
	var baseURL string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Open the interactive terminal client",
		Long: `Open a full-screen terminal client with three tabs: text summarizer,
Q&A over an uploaded PDF, and learning path generator.

The client talks to a running 'aimicro serve'. Every call is bounded by
--timeout and is never retried. Logs go to AIMICRO_CLIENT_LOG when set and
are discarded otherwise, so they never draw over the interface.

Examples:
  aimicro client
  aimicro client --url http://10.0.0.5:8080 --timeout 2m`,
		Annotations: map[string]string{annotationFileLog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			if !cmd.Flags().Changed("url") {
				baseURL = getEnvOrDefault("AIMICRO_URL", baseURL)
			}

			api := client.New(&client.Config{BaseURL: baseURL, Timeout: timeout})
			app, err := tui.NewApp(api)
			if err != nil {
				return fmt.Errorf("client: %w", err)
			}
			app.WithContext(ctx)

			log.Info("client starting", slog.String("url", baseURL), slog.Duration("timeout", api.Timeout()))

			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("client: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", client.DefaultBaseURL, "Base URL of the aimicro API (env: AIMICRO_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "Per-request timeout")

	return cmd
}
