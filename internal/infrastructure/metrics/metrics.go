// Package metrics expone métricas Prometheus del libro de stock, del HTTP y de las tareas.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

var _ inventory.Recorder = (*Metrics)(nil)

// Metrics agrupa los collectors sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	movements         *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	distributions     *prometheus.CounterVec
	suggestions       prometheus.Counter
	deductionFailures prometheus.Counter
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	jobRuns           *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
}

// New registra todos los collectors en un registry nuevo.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_movements_total",
			Help: "Movimientos aplicados al libro por tipo y sentido.",
		}, []string{"kind", "direction"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_movements_rejected_total",
			Help: "Movimientos rechazados por tipo y motivo.",
		}, []string{"kind", "reason"}),
		distributions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_distributions_total",
			Help: "Traslados registrados por estado resultante.",
		}, []string{"status"}),
		suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stock_ledger_purchase_suggestions_created_total",
			Help: "Sugerencias de compra creadas por el evaluador de stock bajo.",
		}),
		deductionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stock_ledger_ingredient_deduction_failures_total",
			Help: "Ingredientes que no se pudieron descontar al completar pedidos.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_http_requests_total",
			Help: "Peticiones HTTP por ruta, método y código.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stock_ledger_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_jobs_total",
			Help: "Ejecuciones de tareas en segundo plano por tarea y estado.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stock_ledger_job_duration_seconds",
			Help:    "Duración de las tareas en segundo plano.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	registry.MustRegister(
		m.movements, m.rejections, m.distributions, m.suggestions, m.deductionFailures,
		m.requests, m.requestDuration, m.jobRuns, m.jobDuration,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer expone el registry para collectors adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func (m *Metrics) MovementApplied(kind, direction string) {
	if m == nil {
		return
	}
	m.movements.WithLabelValues(kind, direction).Inc()
}

func (m *Metrics) MovementRejected(kind, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) DistributionRecorded(status string) {
	if m == nil {
		return
	}
	m.distributions.WithLabelValues(status).Inc()
}

func (m *Metrics) SuggestionsCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.suggestions.Add(float64(n))
}

func (m *Metrics) IngredientDeductionFailed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.deductionFailures.Add(float64(n))
}

// ObserveRequest registra una petición HTTP ya respondida.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Tracker mide una ejecución de tarea.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track inicia la medición de la tarea job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End registra duración y estado; devuelve err sin cambios.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.metrics.jobRuns.WithLabelValues(t.job, status).Inc()
	t.metrics.jobDuration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}
