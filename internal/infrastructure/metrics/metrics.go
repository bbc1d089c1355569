package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProposalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_transitions_total",
			Help: "Proposal lifecycle transitions by event type and outcome",
		},
		[]string{"event", "outcome"},
	)

	TokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_token_verifications_total",
			Help: "Approval token verification results",
		},
		[]string{"result"},
	)

	DependencyCalls = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "proposal_dependency_call_duration_seconds",
			Help: "Latency of calls to external collaborators (pdf, storage, email, payments)",
		},
		[]string{"dependency", "outcome"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the public rate limiter",
		},
		[]string{"route"},
	)
)

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
