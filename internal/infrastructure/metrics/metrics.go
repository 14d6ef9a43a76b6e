// Package metrics expone métricas Prometheus de la API y del motor de inventario.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
)

const namespace = "inventory_ledger"

// Metrics agrupa los colectores sobre un registry propio (no el global).
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	eventsTotal     *prometheus.CounterVec
}

// New crea el registry con métricas de proceso y de Go además de las propias.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Eventos de inventario publicados por tipo y resultado.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.eventsTotal,
	)
	return m
}

// ObserveRequest registra una petición terminada.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler sirve el registry en formato de exposición Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// InstrumentPublisher cuenta cada publicación por tipo de evento y resultado (ok | error).
func (m *Metrics) InstrumentPublisher(next inventory.EventPublisher) inventory.EventPublisher {
	return &instrumentedPublisher{next: next, events: m.eventsTotal}
}

type instrumentedPublisher struct {
	next   inventory.EventPublisher
	events *prometheus.CounterVec
}

func (p *instrumentedPublisher) Publish(ctx context.Context, ev inventory.Event) error {
	err := p.next.Publish(ctx, ev)
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.events.WithLabelValues(ev.Type, result).Inc()
	return err
}
