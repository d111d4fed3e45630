// Package metrics exposes the warehouse's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warehouse-sim-backend/internal/task"
)

const namespace = "warehouse"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	tasks            *prometheus.CounterVec
	taskDuration     *prometheus.HistogramVec
	availableCells   prometheus.Gauge
	equipment        *prometheus.GaugeVec
	stationsOccupied prometheus.Gauge
	stationQueue     prometheus.Gauge
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks finished by the worker pool.",
		}, []string{"kind", "outcome"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of finished tasks.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		availableCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available_cells",
			Help:      "Unlocked empty storage cells at the last sample.",
		}),
		equipment: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "equipment",
			Help:      "Units per availability state at the last sample.",
		}, []string{"state"}),
		stationsOccupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_occupied",
			Help:      "Occupied charging stations at the last sample.",
		}),
		stationQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "station_queue_seconds",
			Help:      "Remaining charge time summed over all stations.",
		}),
	}
	m.registry.MustRegister(
		m.tasks,
		m.taskDuration,
		m.availableCells,
		m.equipment,
		m.stationsOccupied,
		m.stationQueue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTask records one finished task.
func (m *Metrics) ObserveTask(res task.Result) {
	outcome := OutcomeSuccess
	if res.Err != nil {
		outcome = OutcomeError
	}
	m.tasks.WithLabelValues(string(res.Kind), outcome).Inc()
	m.taskDuration.WithLabelValues(string(res.Kind)).Observe(res.Duration().Seconds())
}

// Sample is one reading of the warehouse accessors.
type Sample struct {
	AvailableCells   int
	Equipment        map[string]int
	StationsOccupied int
	QueueSeconds     float64
}

// SetSample updates the gauges.
func (m *Metrics) SetSample(s Sample) {
	m.availableCells.Set(float64(s.AvailableCells))
	for state, n := range s.Equipment {
		m.equipment.WithLabelValues(state).Set(float64(n))
	}
	m.stationsOccupied.Set(float64(s.StationsOccupied))
	m.stationQueue.Set(s.QueueSeconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
