package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Rules *prometheus.CounterVec
	Fits  *prometheus.HistogramVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Rules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ripper",
				Name:      "rules",
			}, []string{"class", "phase"}),
		Fits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ripper",
				Name:      "fit_duration_seconds",
			}, []string{"class"}),
	}
}
