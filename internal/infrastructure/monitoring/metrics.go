package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the authentication core.
type Metrics struct {
	LoginAttempts   *prometheus.CounterVec
	TokensIssued    *prometheus.CounterVec
	TokensRevoked   prometheus.Counter
	LimiterVerdicts *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors on a fresh registry. The
// registry is returned alongside so the HTTP layer can expose it.
func NewMetrics() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome (ok, invalid, captcha, rate_limited, error).",
		}, []string{"outcome"}),

		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "tokens_issued_total",
			Help:      "Tokens issued by type.",
		}, []string{"type"}),

		TokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "tokens_revoked_total",
			Help:      "Access tokens blacklisted.",
		}),

		LimiterVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "limiter_verdicts_total",
			Help:      "Attempt limiter verdicts by operation and verdict.",
		}, []string{"operation", "verdict"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "authcore",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.LoginAttempts,
		m.TokensIssued,
		m.TokensRevoked,
		m.LimiterVerdicts,
		m.RequestDuration,
	)

	return m, reg
}
