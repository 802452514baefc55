package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OTPCodesSent counts sendCode calls by outcome
	OTPCodesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_otp_codes_sent_total",
			Help: "Total number of one-time codes requested",
		},
		[]string{"result"},
	)

	// OTPVerifications counts verifyCode calls by outcome
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_otp_verifications_total",
			Help: "Total number of one-time code verifications",
		},
		[]string{"result"},
	)

	// OTPLockouts counts sessions entering the lockout cooldown
	OTPLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registrar_otp_lockouts_total",
			Help: "Total number of verification lockouts",
		},
	)

	// SubmissionsTotal counts registration submissions by outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_submissions_total",
			Help: "Total number of registration transactions submitted",
		},
		[]string{"result"},
	)

	// ConfirmationsTotal counts correlated confirmation outcomes
	ConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_confirmations_total",
			Help: "Total number of registration confirmations by outcome",
		},
		[]string{"result"},
	)

	// ConfirmationDuration tracks time from broadcast to the matching ledger event
	ConfirmationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "registrar_confirmation_duration_seconds",
			Help:    "Time from broadcast to confirmation in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// ActiveSessions tracks the number of live registration sessions by state
	ActiveSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "registrar_active_sessions",
			Help: "Number of registration sessions by state",
		},
		[]string{"state"},
	)

	// ActiveSubscriptions tracks open ledger event subscriptions
	ActiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registrar_ledger_subscriptions",
			Help: "Number of open ledger event subscriptions",
		},
	)

	// LedgerEvents counts CompanyRegistered events observed by the correlator
	LedgerEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_ledger_events_total",
			Help: "Total number of ledger events observed",
		},
		[]string{"outcome"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
