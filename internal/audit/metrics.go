package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts committed audit entries per action.
type Metrics struct {
	EntriesRecorded *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EntriesRecorded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hr_audit_entries_recorded_total",
			Help: "Total number of committed audit entries by action",
		}, []string{"action", "model"}),
	}
}

func (m *Metrics) IncrementRecorded(action Action, model string) {
	if m == nil {
		return
	}
	m.EntriesRecorded.WithLabelValues(string(action), model).Inc()
}
