// Package metrics holds the prometheus collectors of a netcompiler run.
//
// The collectors live on a private registry. A one-shot CLI run has no
// scrape endpoint, so the registry is written to a node_exporter textfile
// at the end of the run when a path is configured.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics wraps the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	packets     *prometheus.CounterVec
	apiCalls    *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	topology    *prometheus.GaugeVec
	provisioned *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcompiler_packets_total",
			Help: "Packets handed to the observation store, by type and whether they were stored or redundant.",
		}, []string{"type", "result"}),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcompiler_api_calls_total",
			Help: "Provisioning API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netcompiler_api_call_duration_seconds",
			Help:    "Provisioning API call latency.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"operation"}),
		topology: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netcompiler_topology_entities",
			Help: "Entities produced by the inference pass.",
		}, []string{"kind"}),
		provisioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcompiler_provisioned_total",
			Help: "Remote resources the orchestrator attempted to create, by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	m.registry.MustRegister(m.packets, m.apiCalls, m.apiLatency, m.topology, m.provisioned)
	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePacket counts a packet handed to the store
func (m *Metrics) ObservePacket(packetType string, stored bool) {
	if m == nil {
		return
	}
	result := "redundant"
	if stored {
		result = "stored"
	}
	m.packets.WithLabelValues(packetType, result).Inc()
}

// ObserveAPICall counts an API call and records its latency
func (m *Metrics) ObserveAPICall(operation string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(operation, outcome(ok)).Inc()
	m.apiLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetTopology records the number of entities of kind produced by inference
func (m *Metrics) SetTopology(kind string, n int) {
	if m == nil {
		return
	}
	m.topology.WithLabelValues(kind).Set(float64(n))
}

// ObserveProvisioned counts a remote resource creation attempt
func (m *Metrics) ObserveProvisioned(kind string, ok bool) {
	if m == nil {
		return
	}
	m.provisioned.WithLabelValues(kind, outcome(ok)).Inc()
}

// WriteTextfile writes the registry in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
