package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/streamblocks"
	bt "github.com/fwojciec/streamblocks/bubbletea"
	sbjson "github.com/fwojciec/streamblocks/json"
	"github.com/spf13/cobra"
)

func newViewCmd(e env, o *options) *cobra.Command {
	var (
		chunkSize int
		replay    string
	)

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Show a processed stream in a terminal viewer",
		Long: `Process a file, or stdin when no file is given, and show text and blocks
as they are extracted. With --replay, show a JSON-lines event log written
by "streamblocks parse" instead.

Tab expands the focused block, Shift+Tab moves focus to the previous one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var run bt.RunFunc
			var s *session
			if replay != "" {
				if len(args) > 0 {
					return fmt.Errorf("--replay does not take an input file")
				}
				run = replayRun(replay)
			} else {
				r, err := openInput(e.stdin, args)
				if err != nil {
					return err
				}
				s, err = o.newSession(e.stderr)
				if err != nil {
					return err
				}
				run = func(ctx context.Context, onEvent func(streamblocks.Event)) error {
					return streamblocks.Run(ctx, newReaderSource(r, chunkSize), s.proc, s.observe(onEvent))
				}
			}

			if err := bt.Run(cmd.Context(), bt.New(run, streamblocks.DefaultTheme())); err != nil {
				return fmt.Errorf("viewer: %w", err)
			}
			if s != nil {
				return s.finish(e.stderr)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", defaultChunkSize, "bytes per chunk fed to the processor")
	cmd.Flags().StringVar(&replay, "replay", "", "JSON-lines event log to replay")
	return cmd
}

// replayRun returns a RunFunc that decodes events from a JSON-lines log.
func replayRun(path string) bt.RunFunc {
	return func(ctx context.Context, onEvent func(streamblocks.Event)) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open replay: %w", err)
		}
		defer f.Close()
		return replay(ctx, sbjson.NewDecoder(f), onEvent)
	}
}

func replay(ctx context.Context, dec *sbjson.Decoder, onEvent func(streamblocks.Event)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		onEvent(ev)
	}
}
