package streamblocks

import (
	"context"
	"errors"
	"io"
)

// Run drives src through p until the source is exhausted, delivering each
// event to onEvent (which may be nil). Cancellation is checked between
// chunks; on cancellation the processor is finalized so rejections for an
// in-flight block still reach onEvent, and the context error is returned.
func Run(ctx context.Context, src Source, p *Processor, onEvent func(Event)) error {
	deliver := func(events []Event) {
		if onEvent == nil {
			return
		}
		for _, e := range events {
			onEvent(e)
		}
	}

	stream := NewStream(src, p)
	defer stream.Close()

	for {
		if err := ctx.Err(); err != nil {
			deliver(stream.takePending())
			deliver(p.Finalize())
			return err
		}
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		deliver([]Event{evt})
	}
}
