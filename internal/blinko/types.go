package blinko

// NoteType is the Blinko note subtype.
type NoteType int

const (
	// NoteTypeFlash is the quick capture subtype.
	NoteTypeFlash NoteType = 0
	// NoteTypeNote is the structured note subtype.
	NoteTypeNote NoteType = 1
)

// ParseNoteType maps a canonical settings value to a NoteType.
func ParseNoteType(s string) NoteType {
	if s == "note" || s == "1" {
		return NoteTypeNote
	}

	return NoteTypeFlash
}

// Tag is one entry of the remote tag list.
// A ParentID of 0 denotes a root tag.
type Tag struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent"`
}

// Note is the payload submitted to the note upsert endpoint.
// Attachments hold remote file paths obtained from prior uploads.
type Note struct {
	Content     string   `json:"content"`
	Type        NoteType `json:"type"`
	Attachments []string `json:"attachments"`
}

// UploadResult is the response of the upload-by-url endpoint.
type UploadResult struct {
	FilePath    string `json:"filePath"`
	FileName    string `json:"fileName"`
	OriginalURL string `json:"originalURL"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
}

// upsertResponse accepts both the bare and the enveloped upsert response shape.
type upsertResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
	Data   struct {
		ID  int    `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

// NoteID returns the note id from whichever shape was answered.
func (r upsertResponse) NoteID() int {
	if r.ID != 0 {
		return r.ID
	}

	return r.Data.ID
}
