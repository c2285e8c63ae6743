// Package filedb persists user records as one pretty-printed JSON file
// per sanitized identifier under a data directory. This is the default
// storage backend.
package filedb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patric-chuzhbe/coursetrack/internal/db/storage"
	"github.com/patric-chuzhbe/coursetrack/internal/user"
)

// FileDB maps record identifiers to files named `<id>.json` inside dataDir.
// The empty identifier maps to the plain `.json` file, kept for
// compatibility with all-punctuation usernames sanitizing to "".
type FileDB struct {
	dataDir string
}

// New ensures the data directory exists and returns a store over it.
func New(dataDir string) (*FileDB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating the data directory: %w", err)
	}

	return &FileDB{dataDir: dataDir}, nil
}

func (db *FileDB) recordFileName(id string) string {
	return filepath.Join(db.dataDir, id+".json")
}

// Exists reports whether a record is currently persisted for id.
func (db *FileDB) Exists(_ context.Context, id string) (bool, error) {
	_, err := os.Stat(db.recordFileName(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// Load reads and decodes the record persisted for id.
// It returns storage.ErrRecordNotFound when there is none and
// storage.ErrCorruptRecord when the file cannot be decoded.
func (db *FileDB) Load(_ context.Context, id string) (*user.Record, error) {
	file, err := os.Open(db.recordFileName(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, err
	}
	defer file.Close()

	record := &user.Record{}
	if err := json.NewDecoder(file).Decode(record); err != nil {
		return nil, errors.Join(storage.ErrCorruptRecord, err)
	}

	return record, nil
}

// Save overwrites the record persisted for id (create-or-replace).
// The next Load sees either the old or the new full document.
func (db *FileDB) Save(_ context.Context, id string, record *user.Record) error {
	jsonData, err := json.MarshalIndent(record, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling the record: %w", err)
	}

	file, err := os.OpenFile(db.recordFileName(id), os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening the record file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing the record file: %w", err)
	}

	return nil
}

// Ping reports whether the data directory is still reachable.
func (db *FileDB) Ping(_ context.Context) error {
	_, err := os.Stat(db.dataDir)

	return err
}

// Close is a no-op: every Save already flushes to disk.
func (db *FileDB) Close() error {
	return nil
}
