package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lucasreis/reviewdeck/internal/models"
)

// MockItemRepository is a mock implementation of repository.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Get(ctx context.Context, id int64, learnerID int64) (*models.ReviewItem, error) {
	args := m.Called(ctx, id, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewItem), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, learnerID int64, filter models.ItemFilter) ([]models.ReviewItem, error) {
	args := m.Called(ctx, learnerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewItem), args.Error(1)
}

func (m *MockItemRepository) Due(ctx context.Context, learnerID int64, windowStart, windowEnd time.Time) ([]models.ReviewItem, error) {
	args := m.Called(ctx, learnerID, windowStart, windowEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewItem), args.Error(1)
}

func (m *MockItemRepository) Insert(ctx context.Context, item models.ReviewItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) Deactivate(ctx context.Context, id int64, learnerID int64) error {
	args := m.Called(ctx, id, learnerID)
	return args.Error(0)
}

func (m *MockItemRepository) CommitReview(ctx context.Context, item models.ReviewItem, next models.SchedulingState, rec models.SessionRecord) (models.SessionRecord, error) {
	args := m.Called(ctx, item, next, rec)
	return args.Get(0).(models.SessionRecord), args.Error(1)
}
