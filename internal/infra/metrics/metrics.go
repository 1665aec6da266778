package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login outcomes by result kind.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts partitioned by outcome.",
	}, []string{"outcome"})

	// ResetCodesIssued counts issued one-time reset codes.
	ResetCodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "auth",
		Name:      "reset_codes_issued_total",
		Help:      "One-time reset codes issued.",
	})

	// ResetsCompleted counts reset completions by outcome.
	ResetsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "auth",
		Name:      "resets_completed_total",
		Help:      "Password reset completions partitioned by outcome.",
	}, []string{"outcome"})

	// AuditWriteFailures counts swallowed audit persistence failures.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "audit",
		Name:      "write_failures_total",
		Help:      "Audit log writes that failed and were suppressed.",
	})
)
