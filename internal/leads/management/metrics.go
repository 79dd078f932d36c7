package management

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records scoring activity. A nil *Metrics records nothing.
type Metrics struct {
	scored *prometheus.CounterVec
	score  prometheus.Histogram
}

// NewMetrics registers the lead scoring metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		scored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_leads_scored_total",
			Help: "Lead score computations by operation (create, update, import, rescore)",
		}, []string{"operation"}),
		score: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crm_lead_score",
			Help:    "Distribution of computed lead scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
	}
}

func (m *Metrics) observe(operation string, score int) {
	if m == nil {
		return
	}
	m.scored.WithLabelValues(operation).Inc()
	m.score.Observe(float64(score))
}

func (m *Metrics) addRescored(count int) {
	if m == nil || count == 0 {
		return
	}
	m.scored.WithLabelValues(opRescore).Add(float64(count))
}
