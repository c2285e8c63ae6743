// Package memorystorage keeps user records in a plain map. It backs
// unit tests and diskless runs; records survive only for the process
// lifetime.
package memorystorage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/patric-chuzhbe/coursetrack/internal/db/storage"
	"github.com/patric-chuzhbe/coursetrack/internal/user"
)

// MemoryStorage stores records as marshaled JSON, so Load/Save get the
// same copy semantics as the file backend.
type MemoryStorage struct {
	records map[string][]byte
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		records: map[string][]byte{},
	}, nil
}

func (theStorage *MemoryStorage) Exists(_ context.Context, id string) (bool, error) {
	_, found := theStorage.records[id]

	return found, nil
}

func (theStorage *MemoryStorage) Load(_ context.Context, id string) (*user.Record, error) {
	raw, found := theStorage.records[id]
	if !found {
		return nil, storage.ErrRecordNotFound
	}

	record := &user.Record{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, errors.Join(storage.ErrCorruptRecord, err)
	}

	return record, nil
}

func (theStorage *MemoryStorage) Save(_ context.Context, id string, record *user.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	theStorage.records[id] = raw

	return nil
}

func (theStorage *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}
