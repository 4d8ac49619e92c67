// Package prometheus exports processing statistics as Prometheus metrics.
package prometheus

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/streamblocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "streamblocks"

// Observer counts processing events. Pass Observe as, or call it from, the
// event callback of a run.
type Observer struct {
	events     *prometheus.CounterVec   // by event type
	extracted  *prometheus.CounterVec   // by block_type
	rejected   *prometheus.CounterVec   // by block_type and reason
	textLines  prometheus.Counter
	blockLines *prometheus.HistogramVec // by block_type
	openBlocks prometheus.Gauge
}

// NewObserver creates an Observer and registers its metrics with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of events emitted by the processor",
		}, []string{"type"}),

		extracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_extracted_total",
			Help:      "Total number of blocks that passed validation",
		}, []string{"block_type"}),

		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_rejected_total",
			Help:      "Total number of opened blocks that produced no block",
		}, []string{"block_type", "reason"}),

		textLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "text_lines_total",
			Help:      "Total number of lines emitted outside blocks",
		}),

		blockLines: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_lines",
			Help:      "Lines spanned by extracted blocks, markers included",
			Buckets:   []float64{3, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"block_type"}),

		openBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_blocks",
			Help:      "Blocks opened but not yet extracted or rejected",
		}),
	}

	for _, c := range []prometheus.Collector{o.events, o.extracted, o.rejected, o.textLines, o.blockLines, o.openBlocks} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prometheus: %w", err)
		}
	}
	return o, nil
}

// Observe records one event.
func (o *Observer) Observe(e streamblocks.Event) {
	o.events.WithLabelValues(EventType(e)).Inc()

	switch e := e.(type) {
	case streamblocks.EventText:
		o.textLines.Inc()
	case streamblocks.EventBlockOpened:
		o.openBlocks.Inc()
	case streamblocks.EventBlockExtracted:
		o.openBlocks.Dec()
		o.extracted.WithLabelValues(e.Block.Type).Inc()
		o.blockLines.WithLabelValues(e.Block.Type).Observe(float64(e.Block.EndLine - e.Block.StartLine + 1))
	case streamblocks.EventBlockRejected:
		o.openBlocks.Dec()
		o.rejected.WithLabelValues(e.BlockType, string(e.Rejection.Reason)).Inc()
	}
}

// EventType returns the metric label for an event.
func EventType(e streamblocks.Event) string {
	switch e.(type) {
	case streamblocks.EventStreamStarted:
		return "stream_started"
	case streamblocks.EventText:
		return "text"
	case streamblocks.EventOriginal:
		return "original"
	case streamblocks.EventBlockOpened:
		return "block_opened"
	case streamblocks.EventBlockContent:
		return "block_content"
	case streamblocks.EventBlockExtracted:
		return "block_extracted"
	case streamblocks.EventBlockRejected:
		return "block_rejected"
	case streamblocks.EventStreamFinished:
		return "stream_finished"
	default:
		return "unknown"
	}
}

// Dump writes the streamblocks metrics gathered from g in the Prometheus
// text exposition format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("prometheus: gather: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("prometheus: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
