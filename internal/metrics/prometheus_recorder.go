package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "landscape"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	stageResults      *prom.CounterVec
	buildOutcome      *prom.CounterVec
	logoResults       *prom.CounterVec
	logoConcurrency   prom.Gauge
	collectorDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.ExponentialBuckets(1, 2, 12),
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		logoResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "logo_results_total",
			Help:      "Logo preparation results by success/failure",
		}, []string{"result"}),
		logoConcurrency: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "logo_concurrency",
			Help:      "Concurrency ceiling used by the last logo preparation stage",
		}),
		collectorDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "collector_duration_seconds",
			Help:      "Duration of external data collectors",
			Buckets:   prom.ExponentialBuckets(0.5, 2, 12),
		}, []string{"collector", "result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.logoResults, pr.logoConcurrency, pr.collectorDuration)
	return pr
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncLogoResult(success bool) {
	if p == nil {
		return
	}
	p.logoResults.WithLabelValues(resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) SetLogoConcurrency(n int) {
	if p == nil {
		return
	}
	p.logoConcurrency.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveCollectorDuration(collector string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.collectorDuration.WithLabelValues(collector, resultLabel(success)).Observe(d.Seconds())
}
