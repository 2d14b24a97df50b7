package notify

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultUnbound = "unbound"
)

var (
	// eventsTotal counts product events handled by this dispatcher.
	eventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_dispatch_events_total",
		Help: "Product events handled by the dispatcher.",
	})

	// notificationsTotal counts per-recipient outcomes.
	notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_dispatch_notifications_total",
		Help: "Notification attempts by result (sent, failed, unbound).",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(eventsTotal, notificationsTotal)
}
