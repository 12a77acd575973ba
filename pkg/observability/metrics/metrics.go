package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics is recorded by every service wrapper.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// CompetitionMetrics adds the cycle counters on top of OperationMetrics.
type CompetitionMetrics interface {
	OperationMetrics
	RecordDivisionsCreated(ctx context.Context, league string, divisions, members int)
	RecordOutcomes(ctx context.Context, league string, promoted, demoted, stayed int)
	RecordCycleRun(ctx context.Context, cycle string, skipped bool)
}

// Prometheus implements CompetitionMetrics on a prometheus registry.
type Prometheus struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	divisions *prometheus.CounterVec
	members   *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	cycles    *prometheus.CounterVec
}

// NewPrometheus registers the collectors on reg. Passing nil uses the default
// registerer.
func NewPrometheus(namespace string, reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opLabels := []string{"service", "operation"}
	p := &Prometheus{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_attempts_total", Help: "Service operations started.",
		}, opLabels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_success_total", Help: "Service operations completed without infrastructure error.",
		}, opLabels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_failures_total", Help: "Service operations that returned an error or panicked.",
		}, opLabels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds", Help: "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, opLabels),
		divisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "divisions_created_total", Help: "Divisions created by the builder.",
		}, []string{"league"}),
		members: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "division_members_assigned_total", Help: "Memberships created by the builder.",
		}, []string{"league"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "finalization_outcomes_total", Help: "Finalized memberships by outcome.",
		}, []string{"league", "outcome"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cycle_runs_total", Help: "Cycle orchestrator runs.",
		}, []string{"cycle", "skipped"}),
	}
	reg.MustRegister(p.attempts, p.successes, p.failures, p.duration, p.divisions, p.members, p.outcomes, p.cycles)
	return p
}

func (p *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	p.attempts.WithLabelValues(service, operation).Inc()
}

func (p *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	p.successes.WithLabelValues(service, operation).Inc()
}

func (p *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	p.failures.WithLabelValues(service, operation).Inc()
}

func (p *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	p.duration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (p *Prometheus) RecordDivisionsCreated(_ context.Context, league string, divisions, members int) {
	p.divisions.WithLabelValues(league).Add(float64(divisions))
	p.members.WithLabelValues(league).Add(float64(members))
}

func (p *Prometheus) RecordOutcomes(_ context.Context, league string, promoted, demoted, stayed int) {
	p.outcomes.WithLabelValues(league, "promoted").Add(float64(promoted))
	p.outcomes.WithLabelValues(league, "demoted").Add(float64(demoted))
	p.outcomes.WithLabelValues(league, "stayed").Add(float64(stayed))
}

func (p *Prometheus) RecordCycleRun(_ context.Context, cycle string, skipped bool) {
	label := "false"
	if skipped {
		label = "true"
	}
	p.cycles.WithLabelValues(cycle, label).Inc()
}

type noop struct{}

// NewNoop returns metrics that discard everything.
func NewNoop() CompetitionMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordDivisionsCreated(context.Context, string, int, int)               {}
func (noop) RecordOutcomes(context.Context, string, int, int, int)                  {}
func (noop) RecordCycleRun(context.Context, string, bool)                           {}
