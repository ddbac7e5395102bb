// Package audit provides a structured audit logger for CLI command invocations.
// It logs the command name, where configuration came from, and the sanitised
// environment so operators can trace what a run used without exposing
// credentials.
//
// Secrets are logged as presence/absence only — never their values.
package audit

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// secretEnvKeys lists environment variable names whose values must never be
// logged. Only presence ("set") or absence ("unset") is recorded.
var secretEnvKeys = map[string]bool{
	"OPENROUTER_API_KEY":   true,
	"OPENAI_API_KEY":       true,
	"AZURE_OPENAI_API_KEY": true,
	"ARK_API_KEY":          true,
	"GOOGLE_API_KEY":       true,
	"EMBEDDING_API_KEY":    true,
	"QDRANT_API_KEY":       true,
	"LANGFUSE_PUBLIC_KEY":  true,
	"LANGFUSE_SECRET_KEY":  true,
}

// auditKeys is the ordered list of env vars included in every audit log
// entry. Whether a key is redacted is decided by secretEnvKeys.
var auditKeys = []string{
	"MODEL_PROVIDER",
	"MODEL_TIMEOUT",
	"OPENROUTER_API_KEY",
	"OPENROUTER_MODEL",
	"OPENROUTER_BASE_URL",
	"OPENAI_API_KEY",
	"OPENAI_MODEL",
	"AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_ENDPOINT",
	"AZURE_OPENAI_DEPLOYMENT",
	"OLLAMA_HOST",
	"OLLAMA_MODEL",
	"ARK_API_KEY",
	"ARK_MODEL",
	"GOOGLE_API_KEY",
	"GEMINI_MODEL",
	"EMBEDDING_PROVIDER",
	"EMBEDDING_MODEL",
	"EMBEDDING_API_KEY",
	"DATA_DIR",
	"INDEX_BACKEND",
	"QDRANT_HOST",
	"QDRANT_PORT",
	"QDRANT_COLLECTION",
	"QDRANT_API_KEY",
	"RETRIEVER_TOP_K",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"LANGFUSE_PUBLIC_KEY",
	"LANGFUSE_SECRET_KEY",
}

// Start describes a command invocation.
type Start struct {
	// Command is the full cobra command path, e.g. "aimicro serve".
	Command string

	// ConfigPath is the YAML file that was applied, or empty.
	ConfigPath string

	// DotEnv reports whether a .env file was read.
	DotEnv bool
}

// LogCommandStart emits a structured audit log entry when a CLI command begins.
// It records the command name, config sources, and sanitised environment.
func LogCommandStart(ctx context.Context, log *slog.Logger, s Start) {
	attrs := make([]slog.Attr, 0, len(auditKeys)+3)
	attrs = append(attrs,
		slog.String("command", s.Command),
		slog.String("config_file", sanitiseConfigPath(s.ConfigPath)),
		slog.Bool("dotenv", s.DotEnv),
	)

	for _, key := range auditKeys {
		attrs = append(attrs, slog.String(key, SanitiseKey(key, os.Getenv(key))))
	}

	log.LogAttrs(ctx, slog.LevelInfo, "audit: command start", attrs...)
}

// SanitiseKey returns "set" or "unset" for known secret keys, or the actual
// value for non-secret keys. This is safe to use in log messages.
func SanitiseKey(key, value string) string {
	if secretEnvKeys[key] {
		return presence(value)
	}
	return valOrUnset(value)
}

// presence returns "set" if the value is non-empty, "unset" otherwise.
func presence(v string) string {
	if v != "" {
		return "set"
	}
	return "unset"
}

// valOrUnset returns the value if non-empty, "unset" otherwise.
func valOrUnset(v string) string {
	if v != "" {
		return v
	}
	return "unset"
}

// sanitiseConfigPath returns the config path or "none" if empty.
func sanitiseConfigPath(p string) string {
	if p == "" {
		return "none"
	}
	// Redact home directory for privacy in logs.
	home, err := os.UserHomeDir()
	if err == nil && strings.HasPrefix(p, home) {
		return "~" + p[len(home):]
	}
	return p
}
