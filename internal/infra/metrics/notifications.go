package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		notificationsTotal,
		webhooksTotal,
	)
}

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_notifications_total",
			Help: "Status notifications appended, by entity kind.",
		},
		[]string{"entity", "result"},
	)

	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Inbound webhook deliveries by entity and outcome (recorded/reconstructed/stale/rejected).",
		},
		[]string{"entity", "result"},
	)
)

func IncNotification(entity, result string) {
	notificationsTotal.WithLabelValues(norm(entity), norm(result)).Inc()
}

func IncWebhook(entity, result string) {
	webhooksTotal.WithLabelValues(norm(entity), norm(result)).Inc()
}
