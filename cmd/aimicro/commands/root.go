// Package commands defines all Cobra CLI commands for the aimicro binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/54b3r/aimicro-go/internal/audit"
	"github.com/54b3r/aimicro-go/internal/config"
	"github.com/54b3r/aimicro-go/internal/logging"
)

// annotationFileLog marks commands that own the terminal and must log to
// AIMICRO_CLIENT_LOG instead of stderr.
const annotationFileLog = "aimicro/file-log"

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	// configPath holds the --config flag value for YAML config file override.
	var configPath string
	// envFile holds the --env-file flag value.
	var envFile string
	var closeLog func() error

	root := &cobra.Command{
		Use:   "aimicro",
		Short: "AI micro-services: summarize text, ask documents, plan learning",
		Long: `aimicro serves three LLM-backed services over HTTP and the command line:

  summarize   condense free text into a short summary
  documents   upload a PDF, then ask questions answered from its passages
  learning    generate a step-by-step learning path for a topic and level

The chat model is selected via MODEL_PROVIDER (default: openrouter) and the
embedding model via EMBEDDING_PROVIDER (default: ollama). Settings may also
come from a .env file or a YAML config file (~/.aimicro/config.yaml); values
already present in the environment always win.
See 'aimicro --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			dotenv, err := config.LoadDotEnv(envFile)
			if err != nil {
				return err
			}

			// Load YAML config (env vars always override YAML values).
			// LOG_LEVEL may come from the file, so the final logger is built
			// afterwards.
			path, err := config.Load(configPath, logging.Discard())
			if err != nil {
				return err
			}

			log, closer, err := commandLogger(cmd)
			if err != nil {
				return err
			}
			closeLog = closer

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logging.WithLogger(ctx, log)
			cmd.SetContext(ctx)

			if path != "" {
				log.Info("config: loaded YAML config", slog.String("path", path))
			}

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(ctx, log, audit.Start{
				Command:    cmd.CommandPath(),
				ConfigPath: path,
				DotEnv:     dotenv,
			})
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.aimicro/config.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file; missing files are ignored")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewAskCmd(),
		NewSummarizeCmd(),
		NewLearnCmd(),
		NewClientCmd(),
		NewVersionCmd(),
	)

	return root
}

// commandLogger builds the logger for cmd. Commands annotated with
// annotationFileLog write to AIMICRO_CLIENT_LOG, or nowhere when it is unset.
func commandLogger(cmd *cobra.Command) (*slog.Logger, func() error, error) {
	if _, ok := cmd.Annotations[annotationFileLog]; !ok {
		return logging.New(), nil, nil
	}

	path := os.Getenv("AIMICRO_CLIENT_LOG")
	if path == "" {
		return logging.Discard(), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("client: open log file %s: %w", path, err)
	}
	return logging.NewWithWriter(f, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL")), f.Close, nil
}
