// Package metrics adapts ports.MetricsCollector to Prometheus.
package metrics

import (
	"context"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

var help = map[string]string{
	ports.MetricReconciliations:   "Total number of reconciliations by outcome",
	ports.MetricReconcileDuration: "Duration of reconciliations in seconds",
	ports.MetricRemoteCalls:       "Total number of control plane calls by operation and status",
	ports.MetricConvergencePolls:  "Total number of convergence polls by observed state",
}

// Prometheus records metrics into its own registry. Vectors are registered
// on first use; their label names are fixed by that first observation.
type Prometheus struct {
	registry *prometheus.Registry
	logger   ports.Logger

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheus creates a collector with an empty registry.
func NewPrometheus(logger ports.Logger) *Prometheus {
	return &Prometheus{
		registry:   prometheus.NewRegistry(),
		logger:     logger,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

var _ ports.MetricsCollector = (*Prometheus)(nil)

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// IncCounter implements ports.MetricsCollector.
func (p *Prometheus) IncCounter(ctx context.Context, name string, labels map[string]string) {
	p.mu.Lock()
	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: helpFor(name)}, labelNames(labels))
		if !p.register(ctx, name, vec) {
			p.mu.Unlock()
			return
		}
		p.counters[name] = vec
	}
	p.mu.Unlock()

	counter, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		p.warn(ctx, name, err)
		return
	}
	counter.Inc()
}

// SetGauge implements ports.MetricsCollector.
func (p *Prometheus) SetGauge(ctx context.Context, name string, value float64, labels map[string]string) {
	p.mu.Lock()
	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: helpFor(name)}, labelNames(labels))
		if !p.register(ctx, name, vec) {
			p.mu.Unlock()
			return
		}
		p.gauges[name] = vec
	}
	p.mu.Unlock()

	gauge, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		p.warn(ctx, name, err)
		return
	}
	gauge.Set(value)
}

// ObserveHistogram implements ports.MetricsCollector.
func (p *Prometheus) ObserveHistogram(ctx context.Context, name string, value float64, labels map[string]string) {
	p.mu.Lock()
	vec, ok := p.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    helpFor(name),
			Buckets: prometheus.DefBuckets,
		}, labelNames(labels))
		if !p.register(ctx, name, vec) {
			p.mu.Unlock()
			return
		}
		p.histograms[name] = vec
	}
	p.mu.Unlock()

	observer, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		p.warn(ctx, name, err)
		return
	}
	observer.Observe(value)
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func (p *Prometheus) register(ctx context.Context, name string, c prometheus.Collector) bool {
	if err := p.registry.Register(c); err != nil {
		p.warn(ctx, name, err)
		return false
	}
	return true
}

func (p *Prometheus) warn(ctx context.Context, name string, err error) {
	if p.logger != nil {
		p.logger.Warn(ctx, "metric dropped", "metric", name, "error", err)
	}
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
