package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lucasreis/reviewdeck/internal/models"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) ListByItem(ctx context.Context, itemID int64, limit int) ([]models.SessionRecord, error) {
	args := m.Called(ctx, itemID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionRecord), args.Error(1)
}

func (m *MockSessionRepository) ListByLearner(ctx context.Context, learnerID int64, limit int) ([]models.SessionRecord, error) {
	args := m.Called(ctx, learnerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionRecord), args.Error(1)
}
