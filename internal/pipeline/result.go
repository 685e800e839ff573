package pipeline

import (
	"time"

	"github.com/noterelay/noterelay/internal/config"
)

// Outcome is the terminal state of a pipeline run.
type Outcome string

const (
	// OutcomeCompleted carries the remote note id.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed carries the originating error.
	OutcomeFailed Outcome = "failed"
)

// Result is the transient outcome of one run,
// consumed by the chat transport and never persisted.
type Result struct {
	Outcome Outcome
	NoteID  int
	Err     error
}

func timeoutFromConfig(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Blinko.TimeoutSeconds) * time.Second
}
