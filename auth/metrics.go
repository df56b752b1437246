package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics counts authentication activity. A nil *Metrics records nothing.
type Metrics struct {
	operations      *prometheus.CounterVec
	authentications *prometheus.CounterVec
}

// NewMetrics registers the auth collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// operations counts service calls by operation and outcome.
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_operations_total",
			Help: "Total number of auth service operations",
		}, []string{"operation", "outcome"}),

		// authentications counts per-request bearer checks by result code.
		authentications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_request_authentication_total",
			Help: "Total number of bearer credential checks on inbound requests",
		}, []string{"result"}),
	}
}

// RecordOperation counts one service call, err decides the outcome label
func (m *Metrics) RecordOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// RecordAuthentication counts one request authentication result
func (m *Metrics) RecordAuthentication(result string) {
	if m == nil {
		return
	}
	m.authentications.WithLabelValues(result).Inc()
}
