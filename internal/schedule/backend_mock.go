package schedule

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/studyplanner/planner/internal/models"
)

// MockBackend is a mock implementation of the Backend interface.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListBooks(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]models.Book)
	return books, args.Error(1)
}

func (m *MockBackend) ListTags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]models.Tag)
	return tags, args.Error(1)
}

// ListSchedule returns a fresh copy of the configured blocks on every call
// so that callers never share the mock's slice.
func (m *MockBackend) ListSchedule(ctx context.Context) ([]models.ScheduledBlock, error) {
	args := m.Called(ctx)
	blocks, _ := args.Get(0).([]models.ScheduledBlock)
	return append([]models.ScheduledBlock(nil), blocks...), args.Error(1)
}

func (m *MockBackend) ScheduleBook(ctx context.Context, bookID int64, start string) error {
	return m.Called(ctx, bookID, start).Error(0)
}

func (m *MockBackend) MoveBlock(ctx context.Context, blockID int64, date string) error {
	return m.Called(ctx, blockID, date).Error(0)
}

func (m *MockBackend) RetagBlock(ctx context.Context, blockID int64, tagID *int64) error {
	return m.Called(ctx, blockID, tagID).Error(0)
}

func (m *MockBackend) ClearSchedule(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
