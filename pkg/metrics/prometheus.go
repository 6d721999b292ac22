// Package metrics records engine and API activity in Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder records scheduling operations in Prometheus metrics.
type PromRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	steps      *prometheus.HistogramVec
	unassigned *prometheus.GaugeVec
	members    *prometheus.CounterVec
}

// NewPromRecorder registers the scheduler metrics on reg. If reg is nil the
// default registerer is used. Collectors that are already registered are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_operations_total",
		Help: "Engine operations by kind and outcome",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_operation_seconds",
		Help:    "Wall time spent in an engine operation",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"operation"})
	steps := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_search_steps",
		Help:    "Decisions applied by the backtracking search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"operation"})
	unassigned := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_unassigned_members",
		Help: "Members left unassigned by the latest operation",
	}, []string{"operation"})
	members := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_api_members_total",
		Help: "Roster members submitted through the API",
	}, []string{"route"})

	var err error
	if operations, err = register(reg, operations); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if steps, err = register(reg, steps); err != nil {
		return nil, err
	}
	if unassigned, err = register(reg, unassigned); err != nil {
		return nil, err
	}
	if members, err = register(reg, members); err != nil {
		return nil, err
	}
	return &PromRecorder{
		operations: operations,
		latency:    latency,
		steps:      steps,
		unassigned: unassigned,
		members:    members,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveOperation records one finished engine call.
func (r *PromRecorder) ObserveOperation(op, outcome string, elapsed time.Duration, steps, unassigned int) {
	r.operations.WithLabelValues(op, outcome).Inc()
	r.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	if steps > 0 {
		r.steps.WithLabelValues(op).Observe(float64(steps))
	}
	r.unassigned.WithLabelValues(op).Set(float64(unassigned))
}

// RecordRequest counts roster members submitted on an API route.
func (r *PromRecorder) RecordRequest(route string, members int) {
	r.members.WithLabelValues(route).Add(float64(members))
}
