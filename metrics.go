package recollect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision results, used as the "result" label.
const (
	ResultApplied         = "applied"
	ResultSkippedStatus   = "skipped_status"
	ResultSkippedExisting = "skipped_existing"
	ResultNotModified     = "not_modified"
)

var (
	// Decisions counts middleware decisions by result.
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recollect_decisions_total",
			Help: "Total number of cache-control decisions by result",
		},
		[]string{"result"},
	)

	// PublicResponses counts responses marked public.
	PublicResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recollect_public_responses_total",
			Help: "Total number of responses marked cacheable by shared caches",
		},
	)
)
