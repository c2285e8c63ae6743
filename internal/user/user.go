// Package user defines the persisted user record: credentials,
// course progress and per-episode notes. One record exists per
// sanitized identifier and is stored as a single JSON document.
package user

import (
	"encoding/json"
	"time"
)

// Note is a single free-text entry attached to an episode.
// Every write replaces both the content and its timestamp.
type Note struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notes maps episode ID to note type ("reflection", "summary", ...) to the note itself.
type Notes map[string]map[string]Note

// InitialProgress is the progress value every freshly registered user starts with.
// After registration the progress field is owned by the client and the server
// never inspects its shape again.
type InitialProgress struct {
	CompletedEpisodes []int `json:"completedEpisodes"`
	CurrentEpisode    int   `json:"currentEpisode"`
}

// Record is the full per-user document.
//
// Progress is kept as raw JSON: the client fully replaces it on every
// save and the server treats it as an opaque blob.
type Record struct {
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	CreatedAt   time.Time       `json:"createdAt"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
	Progress    json.RawMessage `json:"progress,omitempty"`
	Notes       Notes           `json:"notes,omitempty"`
}

// NewRecord builds a record for a just-registered user with the
// conventional initial progress.
func NewRecord(username, password string, now time.Time) (*Record, error) {
	progress, err := json.Marshal(InitialProgress{
		CompletedEpisodes: []int{},
		CurrentEpisode:    1,
	})
	if err != nil {
		return nil, err
	}

	return &Record{
		Username:  username,
		Password:  password,
		CreatedAt: now,
		Progress:  progress,
	}, nil
}

// SetNote replaces the (episodeID, noteType) entry, initializing the
// nested maps when absent. Sibling entries are never touched.
func (r *Record) SetNote(episodeID, noteType string, note Note) {
	if r.Notes == nil {
		r.Notes = Notes{}
	}
	if r.Notes[episodeID] == nil {
		r.Notes[episodeID] = map[string]Note{}
	}
	r.Notes[episodeID][noteType] = note
}
