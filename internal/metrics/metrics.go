package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.Rules, Observer.prometheus.Fits)
}

type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
}

// IncrementRule counts one rule passing through the given phase for the given class.
func (m *Metrics) IncrementRule(class, phase string) {
	m.prometheus.Rules.WithLabelValues(class, phase).Inc()
}

// ObserveFit records the duration of one per-class fit.
func (m *Metrics) ObserveFit(class string, d time.Duration) {
	m.prometheus.Fits.WithLabelValues(class).Observe(d.Seconds())
}
