// Package metrics holds the Prometheus collectors for signups, contact
// submissions, outbound email and HTTP traffic.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for ContactSubmissionsTotal.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeSpam        = "spam"
	OutcomeRateLimited = "rate_limited"
	OutcomeStorage     = "storage"
)

// Reason labels for WaitlistRejectionsTotal.
const (
	ReasonValidation = "validation"
	ReasonConflict   = "conflict"
	ReasonStorage    = "storage"
)

var (
	WaitlistSignupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_signups_total",
			Help: "Total number of accepted waitlist signups",
		},
	)

	WaitlistRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_rejections_total",
			Help: "Total number of rejected waitlist signups by reason",
		},
		[]string{"reason"},
	)

	ContactSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact submissions by outcome",
		},
		[]string{"outcome"},
	)

	SpamRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spam_rejections_total",
			Help: "Total number of contact submissions rejected by the spam heuristics",
		},
		[]string{"reason"},
	)

	RateLimitHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_hits_total",
			Help: "Total number of contact submissions refused by the rate limiter",
		},
		[]string{"scope"},
	)

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_total",
			Help: "Total number of outbound emails by kind and status",
		},
		[]string{"kind", "status"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(WaitlistSignupsTotal)
	prometheus.MustRegister(WaitlistRejectionsTotal)
	prometheus.MustRegister(ContactSubmissionsTotal)
	prometheus.MustRegister(SpamRejectionsTotal)
	prometheus.MustRegister(RateLimitHitsTotal)
	prometheus.MustRegister(EmailsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
