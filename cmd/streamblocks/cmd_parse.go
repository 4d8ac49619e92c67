package main

import (
	"errors"

	"github.com/fwojciec/streamblocks"
	sbjson "github.com/fwojciec/streamblocks/json"
	"github.com/spf13/cobra"
)

func newParseCmd(e env, o *options) *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Extract blocks from a file or stdin and print events as JSON lines",
		Long: `Process a file, or stdin when no file is given, and print every event
as one JSON object per line.

Input is fed in chunks of --chunk-size bytes, which split lines and
characters at arbitrary points the way network streams do.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInput(e.stdin, args)
			if err != nil {
				return err
			}
			s, err := o.newSession(e.stderr)
			if err != nil {
				return err
			}
			handle, encodeErr := encodeTo(sbjson.NewEncoder(e.stdout))
			runErr := streamblocks.Run(cmd.Context(), newReaderSource(r, chunkSize), s.proc, s.observe(handle))
			return errors.Join(runErr, encodeErr(), s.finish(e.stderr))
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", defaultChunkSize, "bytes per chunk fed to the processor")
	return cmd
}
