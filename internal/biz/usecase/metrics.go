package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messageProcessedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guard_messages_processed",
	Help: "Number of group messages run through the moderation pipeline",
})

var messageDeletedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guard_messages_deleted",
	Help: "Number of messages deleted, by verdict",
}, []string{"verdict"})

var adminAlertCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guard_admin_alerts",
	Help: "Number of alerts dispatched to admins",
})

var classifierCallCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guard_classifier_calls",
	Help: "Number of semantic classifier invocations",
})

var classifierErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guard_classifier_errors",
	Help: "Number of classifier failures handled fail-open",
})

var commandCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guard_commands_handled",
	Help: "Number of operator commands handled, by command",
}, []string{"command"})

var actionFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guard_action_failures",
	Help: "Number of platform operations that failed, by operation",
}, []string{"op"})
