package service

import (
	"github.com/gatherly/gatherly/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveryRecipients = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatherly",
		Subsystem: "delivery",
		Name:      "recipients_total",
		Help:      "Recipient classifications produced by invite delivery.",
	}, []string{"result"})

	deliverySent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatherly",
		Subsystem: "delivery",
		Name:      "sent_total",
		Help:      "Successful deliveries by channel.",
	}, []string{"channel"})

	statusBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gatherly",
		Subsystem: "status",
		Name:      "broadcasts_total",
		Help:      "Status updates broadcast to watchers.",
	})

	statusWatchersNotified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gatherly",
		Subsystem: "status",
		Name:      "watchers_notified_total",
		Help:      "Watcher households notified across all status broadcasts.",
	})
)

func deliveryOutcomeObserve(outcome *model.DeliveryOutcome) {
	deliveryRecipients.WithLabelValues("sent").Add(float64(len(outcome.Sent)))
	deliveryRecipients.WithLabelValues("failed").Add(float64(len(outcome.Failed)))
	deliveryRecipients.WithLabelValues("pending").Add(float64(len(outcome.Pending)))
	for _, entry := range outcome.Sent {
		deliverySent.WithLabelValues(entry.Channel).Inc()
	}
}
