package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{name: "args joined", args: []string{"hello", "world"}, want: "hello world"},
		{name: "no args reads stdin", stdin: "from pipe", want: "from pipe"},
		{name: "dash reads stdin", args: []string{"-"}, stdin: "dash", want: "dash"},
		{name: "dash among args is literal", args: []string{"a", "-", "b"}, want: "a - b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := readInput(tt.args, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	want := []string{"serve", "ingest", "ask", "summarize", "learn", "client", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	client, _, _ := root.Find([]string{"client"})
	if _, ok := client.Annotations[annotationFileLog]; !ok {
		t.Error("client must log to a file, not the terminal")
	}
}

func TestVersionCmd(t *testing.T) {
	t.Setenv("AIMICRO_CONFIG", "")
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version", "--env-file", t.TempDir() + "/missing.env"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "aimicro dev") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestLearnCmd_RequiresTopic(t *testing.T) {
	t.Setenv("AIMICRO_CONFIG", "")
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"learn", "--env-file", t.TempDir() + "/missing.env"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "topic") {
		t.Fatalf("expected missing --topic error, got %v", err)
	}
}
