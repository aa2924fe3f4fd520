// Package metrics exposes Prometheus instrumentation for the pipeline and
// serves the /metrics and /healthz endpoints.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "lookupbot"

var (
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "commands_total",
		Help:      "Total number of commands dispatched",
	}, []string{"command"})

	AuthDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization decisions by reason",
	}, []string{"reason"})

	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of lookup provider requests",
	}, []string{"provider", "status"})

	BroadcastDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "broadcast_deliveries_total",
		Help:      "Total number of broadcast delivery attempts",
	}, []string{"status"})

	CleanupDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cleanup_deletions_total",
		Help:      "Total number of deferred message deletions",
	}, []string{"status"})
)

func IncCommand(command string) {
	Commands.WithLabelValues(command).Inc()
}

func IncAuthDecision(reason string) {
	AuthDecisions.WithLabelValues(reason).Inc()
}

func IncProviderRequest(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ProviderRequests.WithLabelValues(provider, status).Inc()
}

func IncBroadcastDelivery(err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	BroadcastDeliveries.WithLabelValues(status).Inc()
}

func IncCleanupDeletion(err error) {
	status := "deleted"
	if err != nil {
		status = "failed"
	}
	CleanupDeletions.WithLabelValues(status).Inc()
}
