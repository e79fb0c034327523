// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus collectors for RPC calls, pipeline
// stages and the wallet session.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/pipeline"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tranche"

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics owns a private registry so tests and multiple daemons in one
// process do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	rpcCalls   *prometheus.CounterVec
	rpcLatency *prometheus.HistogramVec
	stages     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	connected  prometheus.Gauge
	busy       prometheus.Gauge
	updates    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Soroban JSON-RPC requests segmented by method and outcome.",
		}, []string{"method", "outcome"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for Soroban JSON-RPC requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stages_total",
			Help:      "Transaction pipeline stage completions segmented by outcome.",
		}, []string{"stage", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "failures_total",
			Help:      "Pipeline failures segmented by stage and error kind.",
		}, []string{"stage", "kind"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "connected",
			Help:      "1 while a wallet session is connected.",
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "busy",
			Help:      "1 while a mutating operation is in flight.",
		}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "updates_total",
			Help:      "Session state updates segmented by status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.rpcCalls,
		m.rpcLatency,
		m.stages,
		m.failures,
		m.connected,
		m.busy,
		m.updates,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartMethodTimer implements rpc.MethodTelemetry.
func (m *Metrics) StartMethodTimer(_ context.Context, method string, _ map[string]string) rpc.MethodTimer {
	return &methodTimer{m: m, method: method, start: time.Now()}
}

type methodTimer struct {
	m      *Metrics
	method string
	start  time.Time
}

func (t *methodTimer) Stop(err error) {
	t.m.rpcLatency.WithLabelValues(t.method).Observe(time.Since(t.start).Seconds())
	t.m.rpcCalls.WithLabelValues(t.method, outcome(err)).Inc()
}

// Hooks returns pipeline hooks that count stage outcomes.
func (m *Metrics) Hooks() pipeline.Hooks {
	return pipeline.Hooks{OnStage: m.ObserveStage}
}

func (m *Metrics) ObserveStage(stage pipeline.Stage, err error) {
	m.stages.WithLabelValues(string(stage), outcome(err)).Inc()
	if err != nil {
		m.failures.WithLabelValues(string(stage), errors.KindOf(err)).Inc()
	}
}

// ObserveSession updates the session gauges. It is meant to be passed to
// a session subscription.
func (m *Metrics) ObserveSession(st session.State) {
	m.connected.Set(boolValue(st.Connected()))
	m.busy.Set(boolValue(st.Busy))
	m.updates.WithLabelValues(string(st.Status)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeOK
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
