package streamblocks

import "time"

// emissionPolicy decides which internally produced events become visible
// and stamps each visible event. It never reorders or batches.
type emissionPolicy struct {
	text     bool
	content  bool
	original bool
}

func newEmissionPolicy(c Config) emissionPolicy {
	return emissionPolicy{
		text:     c.EmitTextDeltas,
		content:  c.EmitBlockContent,
		original: c.EmitOriginalEvents,
	}
}

// apply returns the stamped event, or false when the event is suppressed.
func (p emissionPolicy) apply(e Event, now time.Time) (Event, bool) {
	switch e := e.(type) {
	case EventStreamStarted:
		e.Timestamp = now
		return e, true
	case EventText:
		if !p.text {
			return nil, false
		}
		e.Timestamp = now
		return e, true
	case EventOriginal:
		if !p.original {
			return nil, false
		}
		e.Timestamp = now
		return e, true
	case EventBlockOpened:
		e.Timestamp = now
		return e, true
	case EventBlockContent:
		if !p.content {
			return nil, false
		}
		e.Timestamp = now
		return e, true
	case EventBlockExtracted:
		e.Timestamp = now
		return e, true
	case EventBlockRejected:
		e.Timestamp = now
		return e, true
	case EventStreamFinished:
		e.Timestamp = now
		return e, true
	default:
		return nil, false
	}
}
