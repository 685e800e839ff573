package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noterelay/noterelay/internal/blinko"
	"github.com/noterelay/noterelay/internal/db/models"
	"github.com/noterelay/noterelay/internal/settings"
)

// fakeRemote records calls and answers from canned data.
type fakeRemote struct {
	upsertCalls  int
	uploadCalls  int
	lastNote     blinko.Note
	noteID       int
	uploadPaths  []string
	uploadFailAt int // 1-based call index that fails, 0 disables
	tagList      []blinko.Tag
	tagErr       error
	upsertErr    error
}

func (f *fakeRemote) UpsertNote(_ context.Context, note blinko.Note) (int, error) {
	f.upsertCalls++
	f.lastNote = note

	if f.upsertErr != nil {
		return 0, f.upsertErr
	}

	return f.noteID, nil
}

func (f *fakeRemote) UploadByURL(_ context.Context, _ string) (blinko.UploadResult, error) {
	f.uploadCalls++

	if f.uploadFailAt != 0 && f.uploadCalls >= f.uploadFailAt {
		return blinko.UploadResult{}, &blinko.APIError{Kind: blinko.KindServer, StatusCode: 500}
	}

	path := f.uploadPaths[f.uploadCalls-1]

	return blinko.UploadResult{FilePath: path, FileName: path}, nil
}

func (f *fakeRemote) ListTags(_ context.Context) ([]blinko.Tag, error) {
	if f.tagErr != nil {
		return nil, f.tagErr
	}

	return f.tagList, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{}, &models.UserSetting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// configureUser stores a working Blinko configuration for chatID.
func configureUser(t *testing.T, db *gorm.DB, chatID int64) {
	t.Helper()

	require.NoError(t, settings.Set(db, chatID, settings.KeyBlinkoURL, "https://blinko.example.com"))
	require.NoError(t, settings.Set(db, chatID, settings.KeyBlinkoToken, "tok"))
}

func newTestPipeline(db *gorm.DB, remote *fakeRemote) *Pipeline {
	return NewWithRemoteFactory(db, func(baseURL, token string) (Remote, error) {
		if baseURL == "" || token == "" {
			return nil, blinko.ErrNotConfigured
		}

		return remote, nil
	})
}

func TestForwardTextOnly(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)

	remote := &fakeRemote{noteID: 321}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{UserID: 1, Text: "hello world"})

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 321, result.NoteID)
	assert.NoError(t, result.Err)

	// exactly one upsert, no uploads
	assert.Equal(t, 1, remote.upsertCalls)
	assert.Equal(t, 0, remote.uploadCalls)
	assert.Equal(t, "hello world", remote.lastNote.Content)
	assert.Equal(t, blinko.NoteTypeFlash, remote.lastNote.Type)
	assert.Empty(t, remote.lastNote.Attachments)
}

func TestForwardNoteTypeFromSettings(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)
	require.NoError(t, settings.Set(db, 1, settings.KeyNoteType, "note"))

	remote := &fakeRemote{noteID: 1}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{UserID: 1, Text: "x"})

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, blinko.NoteTypeNote, remote.lastNote.Type)
}

func TestForwardWithAttachments(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)

	remote := &fakeRemote{noteID: 5, uploadPaths: []string{"/files/a.jpg", "/files/b.jpg"}}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{
		UserID:      1,
		Text:        "two pics",
		Attachments: []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
	})

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 2, remote.uploadCalls)
	assert.Equal(t, 1, remote.upsertCalls)
	assert.Equal(t, []string{"/files/a.jpg", "/files/b.jpg"}, remote.lastNote.Attachments)
}

func TestForwardSecondUploadFailureIsAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)

	remote := &fakeRemote{uploadPaths: []string{"/files/a.jpg", ""}, uploadFailAt: 2}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{
		UserID:      1,
		Text:        "two pics",
		Attachments: []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
	})

	assert.Equal(t, OutcomeFailed, result.Outcome)
	require.Error(t, result.Err)

	// the note upsert must never be issued
	assert.Equal(t, 2, remote.uploadCalls)
	assert.Equal(t, 0, remote.upsertCalls)
}

func TestForwardTagAnnotation(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)
	require.NoError(t, settings.Set(db, 1, settings.KeyTagsEnabled, "true"))

	remote := &fakeRemote{
		noteID: 9,
		tagList: []blinko.Tag{
			{ID: 1, Name: "work", ParentID: 0},
			{ID: 2, Name: "proj", ParentID: 1},
		},
	}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{UserID: 1, Text: "annotated"})

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, "annotated\n#work #work/proj", remote.lastNote.Content)
}

func TestForwardTagFetchFailureDegrades(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)
	require.NoError(t, settings.Set(db, 1, settings.KeyTagsEnabled, "true"))

	remote := &fakeRemote{
		noteID: 9,
		tagErr: &blinko.APIError{Kind: blinko.KindServer, StatusCode: 502},
	}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{UserID: 1, Text: "plain"})

	// snapshot failure degrades to an unannotated note
	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, "plain", remote.lastNote.Content)
	assert.Equal(t, 1, remote.upsertCalls)
}

func TestForwardTagsDisabledSkipsSnapshot(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)

	remote := &fakeRemote{
		noteID: 9,
		tagErr: errors.New("must not be called"),
	}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{UserID: 1, Text: "plain"})

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, "plain", remote.lastNote.Content)
}

func TestForwardNotConfigured(t *testing.T) {
	db := setupTestDB(t)

	remote := &fakeRemote{}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{UserID: 42, Text: "hi"})

	assert.Equal(t, OutcomeFailed, result.Outcome)
	require.ErrorIs(t, result.Err, blinko.ErrNotConfigured)
	assert.Equal(t, 0, remote.upsertCalls)
}

func TestForwardSubmitFailure(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)

	remote := &fakeRemote{upsertErr: &blinko.APIError{Kind: blinko.KindAuth, StatusCode: 401}}
	p := newTestPipeline(db, remote)

	result := p.Forward(context.Background(), Message{UserID: 1, Text: "hi"})

	assert.Equal(t, OutcomeFailed, result.Outcome)

	var apiErr *blinko.APIError
	require.ErrorAs(t, result.Err, &apiErr)
	assert.Equal(t, blinko.KindAuth, apiErr.Kind)
}

func TestObserveOutcomeConcurrent(t *testing.T) {
	// terminal states of independent runs are observed concurrently,
	// counting must be safe without any ordering between them
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		outcome := OutcomeCompleted
		if i%2 == 0 {
			outcome = OutcomeFailed
		}

		go func(o Outcome) {
			defer wg.Done()
			observeOutcome(o)
		}(outcome)
	}

	wg.Wait()
}

func TestForwardConcurrentUsers(t *testing.T) {
	db := setupTestDB(t)
	configureUser(t, db, 1)
	configureUser(t, db, 2)

	done := make(chan Result, 2)

	for _, userID := range []int64{1, 2} {
		remote := &fakeRemote{noteID: int(userID)}
		p := newTestPipeline(db, remote)

		go func(id int64) {
			done <- p.Forward(context.Background(), Message{UserID: id, Text: "hi"})
		}(userID)
	}

	for i := 0; i < 2; i++ {
		result := <-done
		assert.Equal(t, OutcomeCompleted, result.Outcome)
	}
}
