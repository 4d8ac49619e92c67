package prometheus

import "github.com/prometheus/client_golang/prometheus"

func (o *Observer) Events() *prometheus.CounterVec    { return o.events }
func (o *Observer) Extracted() *prometheus.CounterVec { return o.extracted }
func (o *Observer) Rejected() *prometheus.CounterVec  { return o.rejected }
func (o *Observer) OpenBlocks() prometheus.Gauge      { return o.openBlocks }
