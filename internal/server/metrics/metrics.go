// Package metrics exposes Prometheus counters for authentication outcomes
// and serves them over HTTP.
package metrics

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bankauth/internal/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess          = "success"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeUnauthorized     = "unauthorized"
	OutcomeConflict         = "conflict"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeError            = "error"
)

// LoginAttempts counts Login calls by outcome.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bankauth_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	},
	[]string{"outcome"},
)

// Registrations counts Register calls by outcome.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bankauth_registrations_total",
		Help: "Total number of registrations by outcome",
	},
	[]string{"outcome"},
)

// PasswordMigrations counts legacy plaintext passwords rewritten as hashes.
var PasswordMigrations = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "bankauth_password_migrations_total",
		Help: "Total number of legacy plaintext passwords upgraded to hashes",
	},
)

// RegisterMetrics registers the package collectors with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(Registrations)
	reg.MustRegister(PasswordMigrations)
}

func RecordLogin(err error) {
	LoginAttempts.WithLabelValues(Outcome(err)).Inc()
}

func RecordRegistration(err error) {
	Registrations.WithLabelValues(Outcome(err)).Inc()
}

func RecordMigration() {
	PasswordMigrations.Inc()
}

// Outcome maps a service error to its label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, common.ErrorInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, common.ErrorUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, common.ErrorConflict):
		return OutcomeConflict
	case errors.Is(err, common.ErrorStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return OutcomeStoreUnavailable
	}
	return OutcomeError
}
