package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/streamblocks"
	sbprom "github.com/fwojciec/streamblocks/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newRootCmd(e env) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "streamblocks",
		Short:         "Extract validated structured blocks from text streams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.resolve(cmd)
		},
	}
	o.register(root)

	root.AddCommand(newParseCmd(e, o))
	root.AddCommand(newViewCmd(e, o))
	root.AddCommand(newGenerateCmd(e, o))
	root.AddCommand(newTypesCmd(e, o))
	root.SetIn(e.stdin)
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)
	return root
}

// session is one processor run with its logging and metrics attached.
type session struct {
	proc     *streamblocks.Processor
	observer *sbprom.Observer
	metrics  *prometheus.Registry
}

func (o *options) newSession(stderr io.Writer) (*session, error) {
	logger := newLogger(stderr, o.verbose)
	proc, err := o.processor(logger)
	if err != nil {
		return nil, err
	}
	s := &session{proc: proc}
	if o.metrics {
		s.metrics = prometheus.NewRegistry()
		s.observer, err = sbprom.NewObserver(s.metrics)
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("session started", "syntax", o.syntaxName, "max_block_size", o.maxBlockSize)
	return s, nil
}

// observe wraps an event handler so that metrics see every event first.
func (s *session) observe(next func(streamblocks.Event)) func(streamblocks.Event) {
	if s.observer == nil {
		return next
	}
	return func(e streamblocks.Event) {
		s.observer.Observe(e)
		next(e)
	}
}

// finish writes the metrics dump when metrics are enabled.
func (s *session) finish(w io.Writer) error {
	if s.metrics == nil {
		return nil
	}
	return sbprom.Dump(w, s.metrics)
}

// encodeTo returns an event handler writing JSON lines to w and a function
// reporting the first write error.
func encodeTo(enc interface{ Encode(streamblocks.Event) error }) (func(streamblocks.Event), func() error) {
	var first error
	handle := func(e streamblocks.Event) {
		if first != nil {
			return
		}
		if err := enc.Encode(e); err != nil {
			first = fmt.Errorf("write event: %w", err)
		}
	}
	return handle, func() error { return first }
}
