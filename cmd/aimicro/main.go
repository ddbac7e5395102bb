// Command aimicro is the entry point for the AI micro-services: text
// summarization, document Q&A, and learning-path generation. It runs the
// HTTP API, headless CLI equivalents of each service, and the interactive
// terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/aimicro-go/cmd/aimicro/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
