package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steltz/stepper/pkg/domain"
)

// Metrics holds the stepper collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	StepEnters       *prometheus.CounterVec
	Answers          *prometheus.CounterVec
	Completions      prometheus.Counter
	Deliveries       *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
	GateRejections   prometheus.Counter
}

// NewMetrics creates and registers the collectors. Process and Go runtime
// collectors are included.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StepEnters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepper_step_enters_total",
				Help: "Total number of question visits",
			},
			[]string{"question_id", "direction"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepper_answers_total",
				Help: "Total number of answers entered, by validity",
			},
			[]string{"question_id", "valid"},
		),
		Completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stepper_completions_total",
			Help: "Total number of completed forms",
		}),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepper_submission_deliveries_total",
				Help: "Completion sink calls, by result",
			},
			[]string{"result"},
		),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stepper_submission_delivery_duration_seconds",
			Help:    "Duration of completion sink calls",
			Buckets: prometheus.DefBuckets,
		}),
		GateRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stepper_gate_rejections_total",
			Help: "Requests refused by the device gate",
		}),
	}
	m.Registry.MustRegister(
		m.StepEnters,
		m.Answers,
		m.Completions,
		m.Deliveries,
		m.DeliveryDuration,
		m.GateRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle hooks that record metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			dir := string(e.Direction)
			if dir == "" {
				dir = "none"
			}
			m.StepEnters.WithLabelValues(e.QuestionID, dir).Inc()
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.Answers.WithLabelValues(e.QuestionID, strconv.FormatBool(e.Valid)).Inc()
		},
		OnComplete: func(context.Context, *domain.CompleteEvent) {
			m.Completions.Inc()
		},
	}
}

// ObserveDelivery records one completion sink call. Its signature matches
// completion.ResultFunc.
func (m *Metrics) ObserveDelivery(_ domain.Submission, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Deliveries.WithLabelValues(result).Inc()
	m.DeliveryDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
