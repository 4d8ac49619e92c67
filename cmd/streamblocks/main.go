// Command streamblocks extracts structured blocks from text streams.
//
// Usage:
//
//	streamblocks parse [file]           Process a file or stdin, print events as JSON lines
//	streamblocks view [file]            Process a file or stdin in a terminal viewer
//	streamblocks view --replay events   Replay a JSON-lines event log in the viewer
//	streamblocks generate -p "prompt"   Stream a model response through the processor
//	streamblocks types                  List the registered block types
//
// API keys for generate are read from ANTHROPIC_API_KEY and GEMINI_API_KEY
// unless --api-key is given.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

// env carries everything the commands take from the process environment.
// Environment variables are read only in main.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	anthropicKey string
	geminiKey    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := env{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		anthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		geminiKey:    os.Getenv("GEMINI_API_KEY"),
	}
	if err := newRootCmd(e).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "streamblocks: %v\n", err)
		stop()
		os.Exit(1)
	}
}
