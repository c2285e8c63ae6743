// Package mockstorage provides a testify-based mock implementation
// of the record store interface. It is used for unit testing HTTP
// handlers by simulating storage behavior, including failure paths
// the real backends rarely produce.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/coursetrack/internal/user"
)

// StorageMock is a testify mock implementing storage.Storage.
type StorageMock struct {
	mock.Mock
}

// Exists mocks the record existence check.
func (m *StorageMock) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Load mocks fetching a full record.
func (m *StorageMock) Load(ctx context.Context, id string) (*user.Record, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*user.Record)
	return record, args.Error(1)
}

// Save mocks the create-or-replace write.
func (m *StorageMock) Save(ctx context.Context, id string, record *user.Record) error {
	args := m.Called(ctx, id, record)
	return args.Error(0)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
