package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcomes counts terminal pipeline states. Registered at package init,
// observeOutcome runs concurrently for independent messages.
var outcomes = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "forward_outcomes_total",
		Help: "Number of terminal pipeline states, differentiated by outcome.",
	},
	[]string{"outcome"},
)

func observeOutcome(outcome Outcome) {
	outcomes.WithLabelValues(string(outcome)).Inc()
}
