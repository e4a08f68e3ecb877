package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages
const (
	StageExtract  = "extract"
	StagePrompt   = "prompt"
	StageRequest  = "request"
	StageValidate = "validate"
	StagePersist  = "persist"
)

// Metrics holds the Prometheus metrics of the analysis pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec
	StageSeconds      *prometheus.HistogramVec
	LLMRequestsTotal  *prometheus.CounterVec
	LLMRetriesTotal   prometheus.Counter
	ScoreClampedTotal prometheus.Counter
	CacheLookupsTotal *prometheus.CounterVec
	ReconciledTotal   *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meeting_analyses_total",
				Help: "Analysis pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meeting_analysis_stage_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meeting_analysis_llm_requests_total",
				Help: "Language model calls by result class",
			},
			[]string{"model", "result"},
		),
		LLMRetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "meeting_analysis_llm_retries_total",
				Help: "Language model calls retried after a transient failure",
			},
		),
		ScoreClampedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "meeting_analysis_score_clamped_total",
				Help: "Analyses whose score was outside 0-10 and got clamped",
			},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meeting_analysis_cache_lookups_total",
				Help: "Analysis cache lookups by result",
			},
			[]string{"result"},
		),
		ReconciledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meeting_analysis_reconciled_total",
				Help: "Meeting statuses repaired by the reconciler",
			},
			[]string{"action"},
		),
	}
}

// ObserveStage records the duration of a stage started at start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// IncAnalysis counts a finished pipeline run.
func (m *Metrics) IncAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
}

// IncLLMRequest counts a language model call.
func (m *Metrics) IncLLMRequest(model, result string) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(model, result).Inc()
}

// IncLLMRetry counts a retried language model call.
func (m *Metrics) IncLLMRetry() {
	if m == nil {
		return
	}
	m.LLMRetriesTotal.Inc()
}

// IncScoreClamped counts a clamped score.
func (m *Metrics) IncScoreClamped() {
	if m == nil {
		return
	}
	m.ScoreClampedTotal.Inc()
}

// IncCacheLookup counts a cache hit or miss.
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// AddReconciled counts repaired meetings.
func (m *Metrics) AddReconciled(action string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ReconciledTotal.WithLabelValues(action).Add(float64(n))
}
