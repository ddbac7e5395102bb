// Package tracing wires optional Langfuse tracing into every eino chain run
// by the process.
package tracing

import (
	"log/slog"
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// defaultHost is used when LANGFUSE_HOST is unset.
const defaultHost = "http://localhost:3000"

// Config holds Langfuse credentials and trace labels.
type Config struct {
	// Host is the Langfuse API root.
	Host string

	// PublicKey and SecretKey authenticate the project. Tracing is disabled
	// unless both are set.
	PublicKey string
	SecretKey string

	// Name labels every trace, e.g. "aimicro serve".
	Name string

	// Release tags traces with the binary version.
	Release string
}

// ConfigFromEnv reads LANGFUSE_HOST, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY.
func ConfigFromEnv() *Config {
	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = defaultHost
	}
	return &Config{
		Host:      host,
		PublicKey: os.Getenv("LANGFUSE_PUBLIC_KEY"),
		SecretKey: os.Getenv("LANGFUSE_SECRET_KEY"),
	}
}

// Enabled reports whether both Langfuse keys are present.
func (c *Config) Enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

// Setup returns a Langfuse callback handler and the flush function that must
// be called before process exit to ensure all traces are sent. If Langfuse is
// not configured, both are nil and ok is false.
func Setup(cfg *Config) (handler callbacks.Handler, flush func(), ok bool) {
	if cfg == nil || !cfg.Enabled() {
		return nil, nil, false
	}

	handler, flush = langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      cfg.Host,
		PublicKey: cfg.PublicKey,
		SecretKey: cfg.SecretKey,
		Name:      cfg.Name,
		Release:   cfg.Release,
	})
	return handler, flush, true
}

// Install registers the Langfuse handler globally so every compiled chain
// reports to it. The returned function flushes pending traces and is always
// safe to call.
func Install(cfg *Config, log *slog.Logger) func() {
	handler, flush, ok := Setup(cfg)
	if !ok {
		log.Debug("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY or LANGFUSE_SECRET_KEY not set"))
		return func() {}
	}
	callbacks.AppendGlobalHandlers(handler)
	log.Info("langfuse tracing enabled", slog.String("host", cfg.Host))
	return flush
}
