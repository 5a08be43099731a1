// Package metrics exposes Prometheus counters for authentication outcomes.
//
// The counters use the default registry; the server mounts
// promhttp.Handler() on /metrics. Outcome labels are low-cardinality by
// construction ("success", "invalid", "error") — never put user input in a
// label value.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid" // user-correctable: bad credentials, validation, duplicates
	OutcomeError   = "error"   // server-side failure
)

var (
	// Registrations counts password-path account creations by outcome.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalpath_auth_registrations_total",
		Help: "Registration attempts by outcome.",
	}, []string{"outcome"})

	// Logins counts password login attempts by outcome.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalpath_auth_logins_total",
		Help: "Password login attempts by outcome.",
	}, []string{"outcome"})

	// GoogleLogins counts Google sign-in attempts (both the redirect and
	// the client-token flow) by outcome.
	GoogleLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legalpath_auth_google_logins_total",
		Help: "Google sign-in attempts by outcome.",
	}, []string{"outcome"})
)
