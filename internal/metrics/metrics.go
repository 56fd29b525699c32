// Package metrics exposes Prometheus instrumentation for the balance engine
// and the RPC layer.
package metrics

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "settleup"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	rpcRequests      *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
	skippedRecords   *prometheus.CounterVec
	engineDuration   *prometheus.HistogramVec
	unbalancedGroups prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_records_total",
			Help:      "Malformed records excluded from balance computation, by kind.",
		}, []string{"kind"}),
		engineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_duration_seconds",
			Help:      "Time spent in balance engine computations, by operation.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"operation"}),
		unbalancedGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unbalanced_ledgers_total",
			Help:      "Settlement requests rejected because group balances did not sum to zero.",
		}),
	}
	reg.MustRegister(m.rpcRequests, m.rpcDuration, m.skippedRecords, m.engineDuration, m.unbalancedGroups)
	return m
}

// SkippedRecord counts one malformed record of the given kind.
func (m *Metrics) SkippedRecord(kind string) {
	if m == nil {
		return
	}
	m.skippedRecords.WithLabelValues(kind).Inc()
}

// ObserveEngine records how long an engine operation took.
func (m *Metrics) ObserveEngine(operation string, since time.Time) {
	if m == nil {
		return
	}
	m.engineDuration.WithLabelValues(operation).Observe(time.Since(since).Seconds())
}

// UnbalancedLedger counts a rejected settlement computation.
func (m *Metrics) UnbalancedLedger() {
	if m == nil {
		return
	}
	m.unbalancedGroups.Inc()
}

// Interceptor returns a Connect interceptor that counts and times every RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if m == nil {
				return next(ctx, req)
			}
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeUnknown.String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
				}
			}
			m.rpcRequests.WithLabelValues(procedure, code).Inc()
			m.rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
