package federation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cognicore/reelmeta/pkg/reelmeta/provider"
)

// Metrics records per-provider search outcomes.
type Metrics struct {
	searches *prometheus.CounterVec
	assets   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the federation collectors with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelmeta_provider_searches_total",
				Help: "Total number of provider searches by provider and result status.",
			},
			[]string{"provider", "status"},
		),
		assets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelmeta_provider_assets_total",
				Help: "Total number of assets returned by each provider.",
			},
			[]string{"provider"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reelmeta_provider_search_seconds",
				Help:    "Provider search latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}
}

func (m *Metrics) observe(res provider.Result, seconds float64) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(res.Provider, string(res.Status)).Inc()
	if res.Status == provider.StatusSkipped {
		return
	}
	m.duration.WithLabelValues(res.Provider).Observe(seconds)
	if n := len(res.Assets); n > 0 {
		m.assets.WithLabelValues(res.Provider).Add(float64(n))
	}
}
