package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de sesión de asignación.
const (
	OutcomeOpened      = "opened"
	OutcomeCompleted   = "completed"
	OutcomeCancelled   = "cancelled"
	OutcomeEmpty       = "empty"
	OutcomeFetchFailed = "fetch_failed"
)

// CheckoutMetrics contadores de descuentos y sesiones de asignación. Un valor nil no registra nada.
type CheckoutMetrics struct {
	discounts     *prometheus.CounterVec
	sessions      *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewCheckoutMetrics registra las métricas en el registerer indicado (nil = métricas desactivadas).
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	discounts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_evaluations_total",
		Help: "Evaluaciones de descuento por tipo y resultado.",
	}, []string{"kind", "outcome"})
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_sessions_total",
		Help: "Sesiones de asignación de unidades serializadas por resultado.",
	}, []string{"outcome"})
	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_fetch_duration_seconds",
		Help:    "Duración de la consulta de candidatos a la fuente de inventario.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(discounts, sessions, fetchDuration)
	return &CheckoutMetrics{
		discounts:     discounts,
		sessions:      sessions,
		fetchDuration: fetchDuration,
	}
}

// IncDiscount cuenta una evaluación de descuento (outcome: applied, previewed, rejected, invalid, cleared).
func (m *CheckoutMetrics) IncDiscount(kind, outcome string) {
	if m == nil || m.discounts == nil {
		return
	}
	m.discounts.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// IncSession cuenta un resultado de sesión de asignación.
func (m *CheckoutMetrics) IncSession(outcome string) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveFetch registra la duración de una consulta de candidatos.
func (m *CheckoutMetrics) ObserveFetch(d time.Duration) {
	if m == nil || m.fetchDuration == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
