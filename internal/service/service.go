// Package service implements the application logic over the record
// store: the combined register-or-login flow, progress updates and
// nested note updates. Handlers stay thin and call into here.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/patric-chuzhbe/coursetrack/internal/identifier"
	"github.com/patric-chuzhbe/coursetrack/internal/models"
	"github.com/patric-chuzhbe/coursetrack/internal/user"
)

type storage interface {
	Exists(ctx context.Context, id string) (bool, error)

	Load(ctx context.Context, id string) (*user.Record, error)

	Save(ctx context.Context, id string, record *user.Record) error

	Ping(ctx context.Context) error
}

// ErrInvalidRequest is returned when a required input field is empty or absent.
var ErrInvalidRequest = errors.New("username and password must not be empty")

// ErrUnauthorized is returned when the supplied password does not match
// the stored one.
var ErrUnauthorized = errors.New("wrong password")

// AuthResult is what a successful register-or-login call yields.
type AuthResult struct {
	Username   string
	Progress   json.RawMessage
	Registered bool
}

// Service composes the identifier sanitizer and the record store.
// Every operation is a single synchronous read-then-write sequence;
// concurrent writes to the same identifier are last-writer-wins.
type Service struct {
	db storage
}

func New(db storage) *Service {
	return &Service{
		db: db,
	}
}

// credentialMatches is the single place where a claimed credential is
// checked against the stored one. Exact clear-text comparison, carried
// over from the system this service replaces; a hashing scheme can be
// introduced here without touching any caller.
func credentialMatches(stored, supplied string) bool {
	return stored == supplied
}

// Authenticate registers rawUsername when no record exists for its
// sanitized form, otherwise verifies the password against the existing
// record. Two raw usernames sanitizing to the same identifier share one
// account; that collision is accepted, the flow only ever sees the
// sanitized identifier.
func (s *Service) Authenticate(ctx context.Context, rawUsername, password string) (*AuthResult, error) {
	if rawUsername == "" || password == "" {
		return nil, ErrInvalidRequest
	}

	id := identifier.Sanitize(rawUsername)

	exists, err := s.db.Exists(ctx, id)
	if err != nil {
		return nil, err
	}

	if exists {
		record, err := s.db.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if !credentialMatches(record.Password, password) {
			return nil, ErrUnauthorized
		}

		return &AuthResult{
			Username: id,
			Progress: record.Progress,
		}, nil
	}

	record, err := user.NewRecord(id, password, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.db.Save(ctx, id, record); err != nil {
		return nil, err
	}

	return &AuthResult{
		Username:   id,
		Progress:   record.Progress,
		Registered: true,
	}, nil
}

// GetProgress returns the stored progress blob for rawUsername.
func (s *Service) GetProgress(ctx context.Context, rawUsername string) (json.RawMessage, error) {
	record, err := s.db.Load(ctx, identifier.Sanitize(rawUsername))
	if err != nil {
		return nil, err
	}

	return record.Progress, nil
}

// SaveProgress replaces the progress field wholesale and stamps
// lastUpdated. The progress shape is owned by the caller and is not
// validated here.
func (s *Service) SaveProgress(ctx context.Context, rawUsername string, progress json.RawMessage) error {
	id := identifier.Sanitize(rawUsername)

	record, err := s.db.Load(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	record.Progress = progress
	record.LastUpdated = &now

	return s.db.Save(ctx, id, record)
}

// GetNotes returns either the full notes mapping or, when episodeID is
// non-empty, the entries of that episode. Absent mappings come back as
// empty, never nil.
func (s *Service) GetNotes(ctx context.Context, rawUsername, episodeID string) (any, error) {
	record, err := s.db.Load(ctx, identifier.Sanitize(rawUsername))
	if err != nil {
		return nil, err
	}

	if episodeID != "" {
		episodeNotes := models.EpisodeNotes(record.Notes[episodeID])
		if episodeNotes == nil {
			episodeNotes = models.EpisodeNotes{}
		}

		return episodeNotes, nil
	}

	if record.Notes == nil {
		return user.Notes{}, nil
	}

	return record.Notes, nil
}

// SaveNote replaces the (episodeID, noteType) entry of the user's notes
// and persists the full record. Sibling episodes and note types are
// preserved by the read-merge-write done here.
func (s *Service) SaveNote(ctx context.Context, rawUsername, episodeID, noteType, content string) error {
	id := identifier.Sanitize(rawUsername)

	record, err := s.db.Load(ctx, id)
	if err != nil {
		return err
	}

	record.SetNote(episodeID, noteType, user.Note{
		Content:   content,
		UpdatedAt: time.Now(),
	})

	return s.db.Save(ctx, id, record)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
