// Package metrics exposes Prometheus collectors for the request layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for RequestsTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeTransport = "transport_error"
)

var (
	// RequestsInFlight tracks registered loader tokens.
	RequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "servicecall_requests_in_flight",
		Help: "Number of dispatched requests that have not settled yet.",
	})

	// RequestsTotal counts settled requests by outcome.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "servicecall_requests_total",
		Help: "Total number of settled requests, by outcome.",
	}, []string{"outcome"})

	// LogoutsTotal counts executed session expiry sequences by app context.
	LogoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "servicecall_logouts_total",
		Help: "Total number of session expiry logout sequences, by app context.",
	}, []string{"context"})
)
