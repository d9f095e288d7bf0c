package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lucasreis/reviewdeck/internal/models"
)

// MockLearnerRepository is a mock implementation of repository.LearnerRepository
type MockLearnerRepository struct {
	mock.Mock
}

func (m *MockLearnerRepository) Get(ctx context.Context, id int64) (*models.Learner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Learner), args.Error(1)
}

func (m *MockLearnerRepository) Upsert(ctx context.Context, displayName string) (*models.Learner, error) {
	args := m.Called(ctx, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Learner), args.Error(1)
}

func (m *MockLearnerRepository) UpdateProgress(ctx context.Context, l models.Learner) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLearnerRepository) Stats(ctx context.Context, id int64) (*models.LearnerStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearnerStats), args.Error(1)
}

func (m *MockLearnerRepository) RefreshStats(ctx context.Context, id int64, todayStart, tomorrowStart, soonEnd time.Time) error {
	args := m.Called(ctx, id, todayStart, tomorrowStart, soonEnd)
	return args.Error(0)
}
