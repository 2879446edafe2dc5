package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsAppended      prometheus.Counter
	CorruptLinesSkipped prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EventsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "accessgate_audit_events_appended_total",
			Help: "Total number of events appended to the audit journal",
		}),
		CorruptLinesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "accessgate_audit_corrupt_lines_skipped_total",
			Help: "Total number of journal lines skipped because they failed to decrypt or parse",
		}),
	}
}

func (m *Metrics) IncrementAppended() {
	m.EventsAppended.Inc()
}

func (m *Metrics) IncrementCorruptSkipped() {
	m.CorruptLinesSkipped.Inc()
}
