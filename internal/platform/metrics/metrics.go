package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsTotal   *prometheus.CounterVec
	ReclaimsTotal        prometheus.Counter
	CompensationsTotal   prometheus.Counter
	CompensationFailures prometheus.Counter
	EmailDispatchTotal   *prometheus.CounterVec
	ResetEmailsTotal     prometheus.Counter
	UnverifiedDeletes    prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "account_gateway_registrations_total",
			Help: "Registration attempts by role and outcome.",
		}, []string{"role", "outcome"}),
		ReclaimsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_reclaims_total",
			Help: "Stale unverified identities reclaimed during registration.",
		}),
		CompensationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_compensations_total",
			Help: "Compensating deletes after email dispatch failure.",
		}),
		CompensationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_compensation_failures_total",
			Help: "Compensating deletes that themselves failed and need an out-of-band sweep.",
		}),
		EmailDispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "account_gateway_email_dispatch_total",
			Help: "Transactional email dispatch attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ResetEmailsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_reset_emails_total",
			Help: "Password reset emails dispatched.",
		}),
		UnverifiedDeletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_unverified_deletes_total",
			Help: "Unverified accounts removed via the cleanup endpoint.",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_gateway_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
