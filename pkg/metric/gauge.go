package metric

import "github.com/prometheus/client_golang/prometheus"

// Gauge wraps a prometheus gauge vector.
type Gauge struct {
	Name string
	Help string

	vec *prometheus.GaugeVec
}

// Set sets the series identified by the label values to v.
func (g *Gauge) Set(v float64, val ...string) {
	g.vec.WithLabelValues(val...).Set(v)
}

// Collector exposes the underlying vector, mostly for tests.
func (g *Gauge) Collector() *prometheus.GaugeVec {
	return g.vec
}

// NewGaugeWithRegistry registers a gauge with reg.
func NewGaugeWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) *Gauge {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)

	reg.MustRegister(gauge)

	return &Gauge{
		Name: name,
		Help: help,
		vec:  gauge,
	}
}
