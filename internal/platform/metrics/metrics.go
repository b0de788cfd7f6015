package metrics

import (
	"net/http"

	"syndicate/internal/shared/fault"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts module operations and relayed events on its own registry.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	relayed    *prometheus.CounterVec
	relayFails *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syndicate",
			Name:      "operations_total",
			Help:      "State-changing operations by module, operation and outcome.",
		}, []string{"module", "operation", "outcome"}),
		relayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syndicate",
			Name:      "outbox_relayed_total",
			Help:      "Outbox events published by module.",
		}, []string{"module"}),
		relayFails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syndicate",
			Name:      "outbox_relay_failures_total",
			Help:      "Outbox relay passes that stopped on an error.",
		}, []string{"module"}),
	}
}

// Observe records one operation. The outcome is "ok" or the error kind.
func (r *Recorder) Observe(module string, operation string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(fault.KindOf(err))
	}
	r.operations.WithLabelValues(module, operation, outcome).Inc()
}

func (r *Recorder) ObserveRelay(module string, published int, err error) {
	if r == nil {
		return
	}
	if published > 0 {
		r.relayed.WithLabelValues(module).Add(float64(published))
	}
	if err != nil {
		r.relayFails.WithLabelValues(module).Inc()
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
