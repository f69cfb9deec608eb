// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cowrie/capture/lib/artifact"
)

// metricsNamespace prefixes every capture metric.
const metricsNamespace = "cowrie"

// metrics counts capture outcomes. The collectors always exist so the
// recorder never branches on whether metrics are exported.
type metrics struct {
	captures *prometheus.CounterVec
	bytes    prometheus.Counter
	failures prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "captures_total",
			Help:      "Finalized captures by outcome",
		}, []string{"status"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "capture_published_bytes_total",
			Help:      "Bytes of newly published artifacts",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "capture_failures_total",
			Help:      "Captures that were not stored because of an error",
		}),
	}
	if registerer == nil {
		return m, nil
	}
	collectors := []prometheus.Collector{m.captures, m.bytes, m.failures}
	for index, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			for _, registered := range collectors[:index] {
				registerer.Unregister(registered)
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(result artifact.Result) {
	m.captures.WithLabelValues(result.Status.String()).Inc()
	if result.Status == artifact.StatusPublished {
		m.bytes.Add(float64(result.Artifact.Size))
	}
}
