// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// MembershipChanges counts successful joins and leaves.
	MembershipChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_membership_changes_total",
		Help: "Community joins and leaves",
	}, []string{"action"})

	// SubmissionsTotal counts accepted submissions by outcome (created or updated).
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_submissions_total",
		Help: "Accepted challenge submissions",
	}, []string{"outcome"})

	// VotesTotal counts successful votes and unvotes.
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_votes_total",
		Help: "Votes cast and removed",
	}, []string{"action"})

	// ReputationAwarded sums awarded points by reason.
	ReputationAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_reputation_awards_total",
		Help: "Reputation ledger entries appended",
	}, []string{"reason"})

	// RuleRejections counts domain errors returned to callers by code.
	RuleRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_rule_rejections_total",
		Help: "Business rule rejections by error code",
	}, []string{"code"})

	// ReconciledChallenges counts stored statuses rewritten by the reconciler.
	ReconciledChallenges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "circle_reconciled_challenges_total",
		Help: "Challenge rows whose stored status was rewritten",
	})

	// NotificationStreams is the number of connected notification sockets.
	NotificationStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "circle_notification_streams",
		Help: "Open notification WebSocket connections",
	})
)
