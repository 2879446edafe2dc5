package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TokensIssued     prometheus.Counter
	ValidationsTotal *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "accessgate_tokens_issued_total",
			Help: "Total number of access tokens issued or re-issued",
		}),
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "accessgate_token_validations_total",
			Help: "Total number of token validation attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.TokensIssued.Inc()
}

func (m *Metrics) IncrementValidation(outcome string) {
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
}
