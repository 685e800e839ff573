package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/noterelay/noterelay/internal/uniuri"
)

// state is one stage of a pipeline run.
type state string

const (
	stateReceived        state = "received"
	stateUploading       state = "uploading"
	stateUploaded        state = "uploaded"
	stateBuildingPayload state = "building_payload"
	stateSubmitting      state = "submitting"
	stateCompleted       state = "completed"
	stateFailed          state = "failed"
)

// run tracks the stage progression of one message.
// Stages within a run execute strictly in order.
type run struct {
	id     string
	userID int64
	state  state
}

func newRun(userID int64) *run {
	r := &run{id: uniuri.New(), userID: userID, state: stateReceived}

	log.Debug().Str("run", r.id).Int64("user", r.userID).Msg("message received")

	return r
}

func (r *run) transition(next state) {
	log.Trace().Str("run", r.id).Str("from", string(r.state)).Str("to", string(next)).Msg("pipeline transition")

	r.state = next
}

func (r *run) complete(noteID int) Result {
	r.transition(stateCompleted)
	observeOutcome(OutcomeCompleted)

	log.Info().Str("run", r.id).Int64("user", r.userID).Int("note_id", noteID).Msg("forward completed")

	return Result{Outcome: OutcomeCompleted, NoteID: noteID}
}

func (r *run) fail(err error) Result {
	r.transition(stateFailed)
	observeOutcome(OutcomeFailed)

	log.Error().Str("run", r.id).Int64("user", r.userID).Err(err).Msg("forward failed")

	return Result{Outcome: OutcomeFailed, Err: err}
}
