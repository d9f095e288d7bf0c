package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lucasreis/reviewdeck/internal/models"
)

// MockNoteRepository is a mock implementation of repository.NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Get(ctx context.Context, id int64, learnerID int64) (*models.Note, error) {
	args := m.Called(ctx, id, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, learnerID int64) ([]models.Note, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockNoteRepository) Insert(ctx context.Context, n models.Note) (int64, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id int64, learnerID int64) error {
	args := m.Called(ctx, id, learnerID)
	return args.Error(0)
}
