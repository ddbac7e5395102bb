package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", "info")
	log.Info("indexed", slog.Int("passages", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v (raw: %s)", err, buf.String())
	}
	if rec["msg"] != "indexed" {
		t.Errorf("msg = %v, want indexed", rec["msg"])
	}
	if rec["passages"] != float64(3) {
		t.Errorf("passages = %v, want 3", rec["passages"])
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		level  string
		debug  bool
	}{
		{"json", "debug", true},
		{"json", "info", false},
		{"text", "warn", false},
		{"pretty", "debug", true},
		{"pretty", "error", false},
	}

	for _, tc := range tests {
		t.Run(tc.format+"/"+tc.level, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			NewWithWriter(&buf, tc.format, tc.level).Debug("probe-line")
			if got := strings.Contains(buf.String(), "probe-line"); got != tc.debug {
				t.Errorf("debug visible = %v, want %v (output %q)", got, tc.debug, buf.String())
			}
		})
	}
}

func TestFromContext_DefaultAndInjected(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext returned nil without an injected logger")
	}

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "text", "info")
	ctx := WithLogger(context.Background(), log)
	FromContext(ctx).Info("from-ctx")
	if !strings.Contains(buf.String(), "from-ctx") {
		t.Errorf("injected logger not used: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	if Discard().Handler().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at error level")
	}
}
