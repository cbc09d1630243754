package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	marketplaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_operations_total",
			Help: "Total marketplace operations by outcome",
		},
		[]string{"operation", "status"},
	)

	purchaseConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_conflicts_total",
			Help: "Purchases rejected because the ticket was no longer listed at commit time",
		},
		[]string{"event_id"},
	)

	listedTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "listed_tickets_total",
			Help: "Current number of tickets listed on the marketplace",
		},
	)

	viewQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "view_query_duration_seconds",
			Help:    "Duration of ticket view queries",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"view"},
	)
)

// Monitor records marketplace metrics. A nil Monitor is a no-op so tests
// can wire services without metrics.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) TrackOperation(operation, outcome string) {
	if m == nil {
		return
	}
	marketplaceOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Monitor) TrackPurchaseConflict(eventID string) {
	if m == nil {
		return
	}
	purchaseConflicts.WithLabelValues(eventID).Inc()
}

func (m *Monitor) SetListedTickets(n int) {
	if m == nil {
		return
	}
	listedTickets.Set(float64(n))
}

func (m *Monitor) TrackViewQuery(view string, d time.Duration) {
	if m == nil {
		return
	}
	viewQueryDuration.WithLabelValues(view).Observe(d.Seconds())
}
