// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus metrics for the resource grid subsystem. Every component reports
// through a small observer method so that packages below control never import
// the Prometheus client.

package control

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Grid metrics
	gridZeroings    prometheus.Counter // SetAllZero calls
	gridZeroedPorts prometheus.Counter // ports actually cleared

	// Mapper metrics (label 'path')
	mapperCalls *prometheus.CounterVec
	mapperREs   *prometheus.CounterVec
	mapperPaths map[string]mapperCounters // resolved once, read without locking

	// Pool metrics
	poolAllocations prometheus.Counter
	poolFailures    prometheus.Counter
	poolInUse       prometheus.Gauge
	poolZeroErrors  prometheus.Counter

	// Slot pipeline metrics
	slotsProcessed prometheus.Counter
	slotDuration   prometheus.Histogram

	// Fronthaul metrics (dropped: label 'reason')
	ofhSections *prometheus.CounterVec

	// Pushgateway metrics
	pushesTotal   prometheus.Counter
	pushFailures  prometheus.Counter
	lastPushEpoch prometheus.Gauge
}

// mapperPathLabels are the path labels reported by package mapper.
var mapperPathLabels = []string{"dmrs_type1", "bypass", "general", "symbol_buffer"}

type mapperCounters struct {
	calls prometheus.Counter
	res   prometheus.Counter
}

// NewMetrics registers every collector under namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	m := &Metrics{
		registry: reg,
		gridZeroings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "grid", Name: "zeroings_total",
			Help: "Number of SetAllZero calls.",
		}),
		gridZeroedPorts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "grid", Name: "zeroed_ports_total",
			Help: "Number of non-empty ports cleared by SetAllZero.",
		}),
		mapperCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "mapper", Name: "calls_total",
			Help: "Mapping calls by path.",
		}, []string{"path"}),
		mapperREs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "mapper", Name: "res_total",
			Help: "Resource elements written per port, by path.",
		}, []string{"path"}),
		poolAllocations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool", Name: "allocations_total",
			Help: "Successful grid allocations.",
		}),
		poolFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool", Name: "allocation_failures_total",
			Help: "Grid allocations refused because the ring entry was still in use.",
		}),
		poolInUse: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool", Name: "grids_in_use",
			Help: "Grids currently referenced.",
		}),
		poolZeroErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool", Name: "zeroing_errors_total",
			Help: "Asynchronous zeroings that had to run inline.",
		}),
		slotsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pipeline", Name: "slots_total",
			Help: "Slots mapped and handed to the gateway.",
		}),
		slotDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "pipeline", Name: "slot_duration_seconds",
			Help:    "Time from grid acquisition to gateway hand-off.",
			Buckets: prometheus.ExponentialBuckets(10e-6, 2, 12),
		}),
		ofhSections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ofh", Name: "sections_total",
			Help: "Uplink sections by outcome.",
		}, []string{"outcome"}),
		pushesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pushgateway", Name: "pushes_total",
			Help: "Pushgateway push attempts.",
		}),
		pushFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pushgateway", Name: "failures_total",
			Help: "Failed Pushgateway pushes.",
		}),
		lastPushEpoch: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pushgateway", Name: "last_push_timestamp_seconds",
			Help: "Unix time of the last successful push.",
		}),
	}
	m.mapperPaths = make(map[string]mapperCounters, len(mapperPathLabels))
	for _, path := range mapperPathLabels {
		m.mapperPaths[path] = mapperCounters{
			calls: m.mapperCalls.WithLabelValues(path),
			res:   m.mapperREs.WithLabelValues(path),
		}
	}
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an HTTP handler exposing the registry in the text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnSetAllZero records one grid zeroing that cleared nofPorts ports.
func (m *Metrics) OnSetAllZero(nofPorts int) {
	m.gridZeroings.Inc()
	m.gridZeroedPorts.Add(float64(nofPorts))
}

// OnMapped records one mapping call. It runs once per mapped PDSCH, so the
// known paths use counters resolved at construction.
func (m *Metrics) OnMapped(path string, nofRE int) {
	c, ok := m.mapperPaths[path]
	if !ok {
		c = mapperCounters{
			calls: m.mapperCalls.WithLabelValues(path),
			res:   m.mapperREs.WithLabelValues(path),
		}
	}
	c.calls.Inc()
	c.res.Add(float64(nofRE))
}

// OnAllocate records a pool allocation attempt.
func (m *Metrics) OnAllocate(ok bool) {
	if ok {
		m.poolAllocations.Inc()
		m.poolInUse.Inc()
		return
	}
	m.poolFailures.Inc()
}

// OnRelease records a grid returning to the pool.
func (m *Metrics) OnRelease() { m.poolInUse.Dec() }

// OnZeroingFallback records an asynchronous zeroing that ran inline.
func (m *Metrics) OnZeroingFallback() { m.poolZeroErrors.Inc() }

// OnSlotProcessed records one slot hand-off.
func (m *Metrics) OnSlotProcessed(d time.Duration) {
	m.slotsProcessed.Inc()
	m.slotDuration.Observe(d.Seconds())
}

// OnSection records an uplink section outcome: "written" or a drop reason.
func (m *Metrics) OnSection(outcome string) {
	m.ofhSections.WithLabelValues(outcome).Inc()
}

// Snapshot gathers every metric into a flat map keyed by name and labels, e.g.
// `hioload_ran_mapper_calls_total{path="bypass"}`. Histograms report their sample count.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: gather: %w", err)
	}
	out := make(map[string]float64)
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			out[fam.GetName()+labelString(metric.GetLabel())] = sampleValue(fam.GetType(), metric)
		}
	}
	return out, nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func sampleValue(t dto.MetricType, metric *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(metric.GetHistogram().GetSampleCount())
	case dto.MetricType_SUMMARY:
		return float64(metric.GetSummary().GetSampleCount())
	default:
		return metric.GetUntyped().GetValue()
	}
}

// Push sends the registry to a Pushgateway once.
func (m *Metrics) Push(ctx context.Context, cfg PushgatewayConfig) error {
	m.pushesTotal.Inc()
	err := push.New(cfg.URL, cfg.Job).Gatherer(m.registry).PushContext(ctx)
	if err != nil {
		m.pushFailures.Inc()
		return fmt.Errorf("metrics: push to %s: %w", cfg.URL, err)
	}
	m.lastPushEpoch.Set(float64(time.Now().Unix()))
	return nil
}

// StartPushgatewayWorker pushes every cfg.Interval until ctx is done. It does
// nothing when no URL is configured.
func (m *Metrics) StartPushgatewayWorker(ctx context.Context, cfg PushgatewayConfig) {
	if cfg.URL == "" {
		return
	}
	Logf("[metrics] pushing to %s as job %s every %v", cfg.URL, cfg.Job, cfg.Interval)
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.Push(ctx, cfg); err != nil {
					Logf("[metrics] %v", err)
				}
			}
		}
	}()
}
