package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the application's domain metrics on Prometheus.
type Recorder struct {
	analysesTotal *prometheus.CounterVec
	llmCalls      *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	providerCalls *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	lastPrice     *prometheus.GaugeVec
	errorsTotal   *prometheus.CounterVec
}

var (
	newOnce  sync.Once
	recorder *Recorder
)

// New returns the process-wide metrics recorder. Collectors register on the
// default registry once.
func New() *Recorder {
	newOnce.Do(func() {
		recorder = newRecorder()
	})
	return recorder
}

func newRecorder() *Recorder {
	return &Recorder{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_analyses_total",
				Help: "Completed analyses by flow and decision",
			},
			[]string{"flow", "decision"},
		),
		llmCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_llm_calls_total",
				Help: "LLM completions by agent and result",
			},
			[]string{"agent", "result"},
		),
		llmLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksage_llm_call_seconds",
				Help:    "LLM completion latency",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
			},
			[]string{"agent"},
		),
		providerCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_provider_calls_total",
				Help: "Data provider requests by provider and result",
			},
			[]string{"provider", "result"},
		),
		phaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksage_pipeline_phase_seconds",
				Help:    "Duration of each analysis pipeline phase",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 240},
			},
			[]string{"phase"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocksage_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_errors_total",
				Help: "Errors by type",
			},
			[]string{"type"},
		),
	}
}

// RecordAnalysis records one completed analysis.
func (r *Recorder) RecordAnalysis(flow, decision string) {
	r.analysesTotal.WithLabelValues(flow, decision).Inc()
}

// RecordLLMCall records one model completion.
func (r *Recorder) RecordLLMCall(agent, result string, seconds float64) {
	r.llmCalls.WithLabelValues(agent, result).Inc()
	r.llmLatency.WithLabelValues(agent).Observe(seconds)
}

// RecordProviderCall records one upstream data provider request.
func (r *Recorder) RecordProviderCall(provider, result string) {
	r.providerCalls.WithLabelValues(provider, result).Inc()
}

// RecordPhase records the duration of one pipeline phase.
func (r *Recorder) RecordPhase(phase string, seconds float64) {
	r.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
