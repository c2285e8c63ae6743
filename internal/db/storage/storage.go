// Package storage declares the record store contract shared by all
// storage backends (per-user JSON files, in-memory map, PostgreSQL).
package storage

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/coursetrack/internal/user"
)

// ErrRecordNotFound is returned by Load when no record is persisted
// for the requested identifier.
var ErrRecordNotFound = errors.New("no record for this identifier")

// ErrCorruptRecord is returned by Load when a persisted record exists
// but cannot be decoded.
var ErrCorruptRecord = errors.New("persisted record cannot be decoded")

// Storage is the narrow record store every higher layer is written
// against. Save is create-or-replace; concurrent writers for the same
// identifier follow last-writer-wins semantics, no locking is done here.
type Storage interface {
	Exists(ctx context.Context, id string) (bool, error)

	Load(ctx context.Context, id string) (*user.Record, error)

	Save(ctx context.Context, id string, record *user.Record) error

	Ping(ctx context.Context) error

	Close() error
}
