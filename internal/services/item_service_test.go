package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/testutil/mocks"
)

func validItem() models.ReviewItem {
	return models.ReviewItem{
		LearnerID: 1,
		NoteID:    2,
		Kind:      models.KindFlashcard,
		Questions: []models.Question{
			{Prompt: "capital of France?", Answer: "Paris"},
		},
	}
}

func TestCreateItemSetsInitialScheduling(t *testing.T) {
	items := new(mocks.MockItemRepository)
	sessions := new(mocks.MockSessionRepository)
	svc := NewItemService(items, sessions, 10)

	items.On("Insert", mock.Anything, mock.MatchedBy(func(it models.ReviewItem) bool {
		return it.Scheduling.EasinessFactor == 2.5 &&
			it.Scheduling.IntervalDays == 1 &&
			it.Active && it.Version == 1 &&
			it.Questions[0].ID != ""
	})).Return(int64(7), nil)

	created, err := svc.Create(context.Background(), validItem(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.WithinDuration(t, fixedNow, created.Scheduling.NextReviewAt, 0)
	items.AssertExpectations(t)
}

func TestCreateItemValidation(t *testing.T) {
	items := new(mocks.MockItemRepository)
	sessions := new(mocks.MockSessionRepository)
	svc := NewItemService(items, sessions, 10)

	tests := []struct {
		name   string
		mutate func(*models.ReviewItem)
	}{
		{"bad kind", func(it *models.ReviewItem) { it.Kind = "crossword" }},
		{"no questions", func(it *models.ReviewItem) { it.Questions = nil }},
		{"empty prompt", func(it *models.ReviewItem) { it.Questions[0].Prompt = "" }},
		{"empty answer", func(it *models.ReviewItem) { it.Questions[0].Answer = "" }},
		{"mcq needs options", func(it *models.ReviewItem) { it.Kind = models.KindMCQ }},
		{"duplicate question ids", func(it *models.ReviewItem) {
			it.Questions = append(it.Questions, it.Questions[0])
			it.Questions[0].ID = "dup"
			it.Questions[1].ID = "dup"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)

			_, err := svc.Create(context.Background(), item, fixedNow)
			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)
		})
	}
	items.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestGetItemNotFound(t *testing.T) {
	items := new(mocks.MockItemRepository)
	sessions := new(mocks.MockSessionRepository)
	svc := NewItemService(items, sessions, 10)

	items.On("Get", mock.Anything, int64(5), int64(1)).Return(nil, nil)

	_, err := svc.Get(context.Background(), 5, 1)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestDeactivateMissingItem(t *testing.T) {
	items := new(mocks.MockItemRepository)
	sessions := new(mocks.MockSessionRepository)
	svc := NewItemService(items, sessions, 10)

	items.On("Deactivate", mock.Anything, int64(5), int64(1)).Return(sql.ErrNoRows)

	err := svc.Deactivate(context.Background(), 5, 1)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestItemStats(t *testing.T) {
	items := new(mocks.MockItemRepository)
	sessions := new(mocks.MockSessionRepository)
	svc := NewItemService(items, sessions, 10)

	it := dueItem(5, 1)
	items.On("Get", mock.Anything, int64(5), int64(1)).Return(&it, nil)
	sessions.On("ListByItem", mock.Anything, int64(5), 10).Return([]models.SessionRecord{
		{ID: 1, AccuracyPercent: 50},
		{ID: 2, AccuracyPercent: 100},
	}, nil)

	stats, err := svc.Stats(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 75.0, stats.AverageAccuracy)
	assert.Equal(t, it.Scheduling, stats.Scheduling)
}
