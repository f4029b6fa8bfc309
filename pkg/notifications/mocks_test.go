package notifications

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStorage for testing Service and Poller
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Create(ctx context.Context, userID, boardID, nodeID int64, message string) (Notification, error) {
	args := m.Called(ctx, userID, boardID, nodeID, message)
	return args.Get(0).(Notification), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, id int64) (Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Notification), args.Error(1)
}

func (m *MockStorage) ListUnseenSince(ctx context.Context, userID, cursor int64) ([]Notification, error) {
	args := m.Called(ctx, userID, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockStorage) ListAll(ctx context.Context, userID int64) ([]Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockStorage) ListUnread(ctx context.Context, userID int64) ([]Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockStorage) LatestID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CountUnread(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) MarkRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStorage) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDeliverer for testing Service
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockDeliverer) DeliverBatch(ctx context.Context, ns []Notification) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}
