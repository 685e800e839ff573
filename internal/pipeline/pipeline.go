// Package pipeline orchestrates one inbound chat message end to end:
// attachment upload, payload construction, tag annotation and submission.
package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/noterelay/noterelay/internal/blinko"
	"github.com/noterelay/noterelay/internal/config"
	"github.com/noterelay/noterelay/internal/settings"
	"github.com/noterelay/noterelay/internal/tags"
)

// Message is the normalized inbound message accepted by the core.
// Attachments hold source URLs the remote service can fetch itself.
type Message struct {
	UserID      int64
	Text        string
	Attachments []string
}

// Remote is the subset of the Blinko client the pipeline drives.
type Remote interface {
	UpsertNote(ctx context.Context, note blinko.Note) (int, error)
	UploadByURL(ctx context.Context, url string) (blinko.UploadResult, error)
	ListTags(ctx context.Context) ([]blinko.Tag, error)
}

// RemoteFactory builds a Remote for one user's base URL and token.
type RemoteFactory func(baseURL, token string) (Remote, error)

// Pipeline forwards inbound messages as Blinko notes.
// Each call to Forward is an independent unit of work, runs for
// different messages never affect each other.
type Pipeline struct {
	db        *gorm.DB
	newRemote RemoteFactory
}

// New creates a Pipeline backed by real Blinko clients tuned from cfg.
func New(cfg *config.Config, db *gorm.DB) *Pipeline {
	opts := []blinko.Option{
		blinko.WithMaxAttempts(cfg.Blinko.MaxAttempts),
		blinko.WithTimeout(timeoutFromConfig(cfg)),
	}

	return &Pipeline{
		db: db,
		newRemote: func(baseURL, token string) (Remote, error) {
			return blinko.New(baseURL, token, opts...)
		},
	}
}

// NewWithRemoteFactory creates a Pipeline with a custom remote factory.
func NewWithRemoteFactory(db *gorm.DB, factory RemoteFactory) *Pipeline {
	return &Pipeline{db: db, newRemote: factory}
}

// Forward runs the state machine for one message.
// Uploads are all-or-nothing: any failed attachment upload fails the run
// before the note upsert is issued. The pipeline never retries at its own
// level, retrying is internal to the remote client.
func (p *Pipeline) Forward(ctx context.Context, msg Message) Result {
	run := newRun(msg.UserID)

	effective, err := settings.List(p.db, msg.UserID)
	if err != nil {
		return run.fail(err)
	}

	remote, err := p.newRemote(effective[settings.KeyBlinkoURL], effective[settings.KeyBlinkoToken])
	if err != nil {
		return run.fail(err)
	}

	// upload phase, skipped entirely for text-only messages
	attachmentPaths := make([]string, 0, len(msg.Attachments))

	for _, src := range msg.Attachments {
		run.transition(stateUploading)

		uploaded, err := remote.UploadByURL(ctx, src)
		if err != nil {
			return run.fail(err)
		}

		run.transition(stateUploaded)

		attachmentPaths = append(attachmentPaths, uploaded.FilePath)
	}

	run.transition(stateBuildingPayload)

	content := msg.Text

	if effective[settings.KeyTagsEnabled] == "true" {
		// one snapshot per run, fetch failure degrades to an unannotated note
		if line := p.tagLine(ctx, remote, run); line != "" {
			content = strings.TrimRight(content, "\n") + "\n" + line
		}
	}

	note := blinko.Note{
		Content:     content,
		Type:        blinko.ParseNoteType(effective[settings.KeyNoteType]),
		Attachments: attachmentPaths,
	}

	run.transition(stateSubmitting)

	noteID, err := remote.UpsertNote(ctx, note)
	if err != nil {
		return run.fail(err)
	}

	return run.complete(noteID)
}

// tagLine fetches the tag snapshot and renders the annotation line.
func (p *Pipeline) tagLine(ctx context.Context, remote Remote, run *run) string {
	snapshot, err := remote.ListTags(ctx)
	if err != nil {
		log.Warn().Err(err).Str("run", run.id).Msg("tag snapshot fetch failed, submitting unannotated note")

		return ""
	}

	return strings.Join(tags.ResolveAllPaths(snapshot), " ")
}
