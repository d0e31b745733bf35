package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa las métricas Prometheus del ledger.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas).
type Metrics struct {
	LotsCreated          prometheus.Counter
	Readings             *prometheus.CounterVec
	Breaches             prometheus.Counter
	LotsDelivered        prometheus.Counter
	EventPublishFailures prometheus.Counter
	AlertEventsProcessed *prometheus.CounterVec
}

// New crea y registra las métricas en reg.
// Con reg == nil se usa el registry global de Prometheus.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		LotsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_lots_created_total",
			Help: "Total number of lots created in the ledger",
		}),
		Readings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coldchain_readings_total",
			Help: "Temperature readings recorded, by envelope result",
		}, []string{"range"}),
		Breaches: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_breaches_total",
			Help: "Lots whose cold chain was broken",
		}),
		LotsDelivered: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_lots_delivered_total",
			Help: "Lots marked as delivered",
		}),
		EventPublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_event_publish_failures_total",
			Help: "Ledger events that could not be published",
		}),
		AlertEventsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coldchain_alert_events_processed_total",
			Help: "Ledger events consumed by the alert worker, by type",
		}, []string{"type"}),
	}
}

func (m *Metrics) IncLotsCreated() {
	if m == nil {
		return
	}
	m.LotsCreated.Inc()
}

func (m *Metrics) ObserveReading(outOfRange bool) {
	if m == nil {
		return
	}
	label := "in"
	if outOfRange {
		label = "out"
	}
	m.Readings.WithLabelValues(label).Inc()
}

func (m *Metrics) IncBreaches() {
	if m == nil {
		return
	}
	m.Breaches.Inc()
}

func (m *Metrics) IncDelivered() {
	if m == nil {
		return
	}
	m.LotsDelivered.Inc()
}

func (m *Metrics) IncPublishFailures() {
	if m == nil {
		return
	}
	m.EventPublishFailures.Inc()
}

func (m *Metrics) IncAlertProcessed(eventType string) {
	if m == nil {
		return
	}
	m.AlertEventsProcessed.WithLabelValues(eventType).Inc()
}
