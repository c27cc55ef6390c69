// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package obs records client side counters for the response cache and the
// task poller and can dump them in the Prometheus textfile format.
package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives cache and polling events. Implementations must be safe
// for concurrent use.
type Recorder interface {
	CacheLookup(hit bool)
	CacheStore()
	CacheSkip(reason string)
	CacheInvalidated(scope string, removed int)
	PollAttempt(status string)
	PollOutcome(outcome string)
}

// Noop discards everything.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) CacheLookup(bool)             {}
func (Noop) CacheStore()                  {}
func (Noop) CacheSkip(string)             {}
func (Noop) CacheInvalidated(string, int) {}
func (Noop) PollAttempt(string)           {}
func (Noop) PollOutcome(string)           {}

// Metrics is a Recorder backed by a private Prometheus registry.
type Metrics struct {
	registry      *prometheus.Registry
	cacheRequests *prometheus.CounterVec
	cacheStores   prometheus.Counter
	cacheSkips    *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	pollAttempts  *prometheus.CounterVec
	pollOutcomes  *prometheus.CounterVec
}

var _ Recorder = (*Metrics)(nil)

// NewMetrics registers the clinicctl collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinicctl_cache_requests_total",
		Help: "Total response cache lookups",
	}, []string{"status"})

	cacheStores := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clinicctl_cache_stores_total",
		Help: "Total responses written to the cache",
	})

	cacheSkips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinicctl_cache_skips_total",
		Help: "Total responses not cached",
	}, []string{"reason"})

	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinicctl_cache_invalidated_entries_total",
		Help: "Total cache entries removed by invalidation",
	}, []string{"scope"})

	pollAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinicctl_task_poll_attempts_total",
		Help: "Total task status queries",
	}, []string{"status"})

	pollOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinicctl_task_poll_outcomes_total",
		Help: "Total finished poll sessions",
	}, []string{"outcome"})

	registry.MustRegister(cacheRequests, cacheStores, cacheSkips, invalidations, pollAttempts, pollOutcomes)

	return &Metrics{
		registry:      registry,
		cacheRequests: cacheRequests,
		cacheStores:   cacheStores,
		cacheSkips:    cacheSkips,
		invalidations: invalidations,
		pollAttempts:  pollAttempts,
		pollOutcomes:  pollOutcomes,
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) CacheLookup(hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	m.cacheRequests.WithLabelValues(status).Inc()
}

func (m *Metrics) CacheStore() {
	m.cacheStores.Inc()
}

func (m *Metrics) CacheSkip(reason string) {
	m.cacheSkips.WithLabelValues(reason).Inc()
}

func (m *Metrics) CacheInvalidated(scope string, removed int) {
	if removed <= 0 {
		return
	}
	m.invalidations.WithLabelValues(scope).Add(float64(removed))
}

func (m *Metrics) PollAttempt(status string) {
	if status == "" {
		status = "error"
	}
	m.pollAttempts.WithLabelValues(status).Inc()
}

func (m *Metrics) PollOutcome(outcome string) {
	m.pollOutcomes.WithLabelValues(outcome).Inc()
}

// WriteTextfile dumps the registry to path in the node_exporter textfile
// collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
