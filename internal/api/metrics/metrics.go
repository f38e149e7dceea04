// Package metrics defines the custom Prometheus metrics of the user-admin API.
// HTTP request metrics come from echoprometheus; these cover the domain
// operations behind the routes.
//
// All vectors are registered with the default registry through promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "user_admin"

// UserOperationsTotal counts user-administration operations.
// Labels:
//   - operation: create, update, delete, rotate_token, list, get
//   - result: "ok", "invalid" (rejected input or conflict), "not_found" or "error"
var UserOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_operations_total",
		Help:      "Total number of user-administration operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// UserOperationDuration measures how long the service call behind an
// operation takes, excluding request decoding.
var UserOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "user_operation_duration_seconds",
		Help:      "Duration of user-administration service calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// AuthAttemptsTotal counts authentication attempts.
// Labels:
//   - method: "password", "jwt" or "api_token"
//   - result: "ok" or "denied"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// ObserveOperation records one finished operation.
func ObserveOperation(operation, result string, started time.Time) {
	UserOperationsTotal.WithLabelValues(operation, result).Inc()
	UserOperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveAuth records one authentication attempt.
func ObserveAuth(method string, ok bool) {
	result := "denied"
	if ok {
		result = "ok"
	}
	AuthAttemptsTotal.WithLabelValues(method, result).Inc()
}
