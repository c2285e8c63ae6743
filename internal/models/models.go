// Package models contains the JSON request and response shapes of the
// HTTP API.
package models

import (
	"encoding/json"
	"time"

	"github.com/patric-chuzhbe/coursetrack/internal/user"
)

// AuthRequest is the body of POST /api/auth. The endpoint conflates
// registration and login: the only signal distinguishing them is prior
// existence of the record.
type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned for both a successful registration and a
// successful login; Data carries the user's current progress.
type AuthResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Username string          `json:"username"`
	Data     json.RawMessage `json:"data"`
}

// SaveProgressRequest is the body of POST /api/progress/{username}.
// Progress is opaque to the server and replaces the stored value wholesale.
type SaveProgressRequest struct {
	Progress json.RawMessage `json:"progress"`
}

// SaveResponse acknowledges a progress or note write.
type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProgressResponse is the body of GET /api/progress/{username}.
type ProgressResponse struct {
	Success  bool            `json:"success"`
	Progress json.RawMessage `json:"progress"`
}

// SaveNoteRequest is the body of POST /api/notes/{username}.
type SaveNoteRequest struct {
	EpisodeID string `json:"episodeId" validate:"required"`
	NoteType  string `json:"noteType" validate:"required"`
	Content   string `json:"content"`
}

// NotesResponse is the body of GET /api/notes/{username}[/{episodeId}].
// Notes holds either the full nested mapping or a single episode's
// entries, depending on the request.
type NotesResponse struct {
	Success bool `json:"success"`
	Notes   any  `json:"notes"`
}

// EpisodeNotes is the per-episode slice of the notes mapping, as
// returned when an episode ID is requested.
type EpisodeNotes map[string]user.Note

// ContentResponse is the body of GET /api/content/... for a single file.
type ContentResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// ContentListResponse is the body of GET /api/content/... for a
// directory listing.
type ContentListResponse struct {
	Success bool     `json:"success"`
	Files   []string `json:"files"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Storage backend kinds selectable via configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
