// Package metrics exposes the Prometheus instruments of the auth and
// reconciliation paths. Instruments are registered on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeLocked  = "locked"
)

// Reconciliation document results.
const (
	ResultCreated = "created"
	ResultUpdated = "updated"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

var (
	// authAttempts counts authentication attempts by serving mode and outcome.
	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalements_auth_attempts_total",
		Help: "Authentication attempts by mode and outcome",
	}, []string{"mode", "outcome"})

	reconciledDocuments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalements_sync_documents_total",
		Help: "Documents processed by reconciliation passes",
	}, []string{"collection", "result"})

	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signalements_sync_pass_duration_seconds",
		Help:    "Reconciliation pass duration",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"trigger"})

	online = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signalements_probe_online",
		Help: "1 when the last connectivity probe succeeded",
	})
)

// ObserveAuth records one authentication outcome.
func ObserveAuth(mode, outcome string) {
	authAttempts.WithLabelValues(mode, outcome).Inc()
}

// ObserveDocument records the fate of one reconciled document.
func ObserveDocument(collection, result string) {
	reconciledDocuments.WithLabelValues(collection, result).Inc()
}

// ObservePass records the duration of a reconciliation pass in seconds.
func ObservePass(trigger string, seconds float64) {
	passDuration.WithLabelValues(trigger).Observe(seconds)
}

// SetOnline publishes the last probe state.
func SetOnline(v bool) {
	if v {
		online.Set(1)
		return
	}
	online.Set(0)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
