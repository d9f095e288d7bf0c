package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
	"github.com/lucasreis/reviewdeck/internal/review"
	"github.com/lucasreis/reviewdeck/internal/testutil/mocks"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func dueItem(id int64, learnerID int64) models.ReviewItem {
	return models.ReviewItem{
		ID:        id,
		LearnerID: learnerID,
		Kind:      models.KindFlashcard,
		Active:    true,
		Version:   1,
		Questions: []models.Question{
			{ID: "q1", Prompt: "capital of France?", Answer: "Paris"},
		},
		Scheduling: models.SchedulingState{
			EasinessFactor: 2.5,
			IntervalDays:   1,
			LastReviewedAt: fixedNow.Add(-24 * time.Hour),
			NextReviewAt:   fixedNow,
		},
	}
}

func newReviewService(items *mocks.MockItemRepository, learners *mocks.MockLearnerRepository) ReviewService {
	return NewReviewService(items, learners, review.NewRegistry(time.Hour), nil, 3)
}

func TestDueSetWindow(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	todayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	items.On("Due", mock.Anything, int64(1), todayStart, todayStart.AddDate(0, 0, 1)).
		Return([]models.ReviewItem{dueItem(10, 1)}, nil)

	got, err := svc.DueSet(context.Background(), 1, fixedNow, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	items.AssertExpectations(t)
}

func TestDueSetNormalizesLegacyState(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	legacy := dueItem(10, 1)
	legacy.Scheduling = models.SchedulingState{} // pre-migration row
	items.On("Due", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]models.ReviewItem{legacy}, nil)

	got, err := svc.DueSet(context.Background(), 1, fixedNow, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.5, got[0].Scheduling.EasinessFactor)
	assert.Equal(t, 1, got[0].Scheduling.IntervalDays)
}

func TestDueSetMinGapFiltersRecentlyReviewed(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	recent := dueItem(10, 1)
	recent.Scheduling.LastReviewedAt = fixedNow.Add(-2 * time.Minute)
	old := dueItem(11, 1)

	items.On("Due", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]models.ReviewItem{recent, old}, nil)

	got, err := svc.DueSet(context.Background(), 1, fixedNow, 0, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].ID)
}

func TestStartSessionWithExplicitItems(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	it := dueItem(10, 1)
	items.On("Get", mock.Anything, int64(10), int64(1)).Return(&it, nil)

	sess, err := svc.StartSession(context.Background(), 1, []int64{10}, review.PerQuestion, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, review.PhasePresenting, sess.Phase())

	// The registry serves the same session back.
	again, err := svc.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, again)
}

func TestStartSessionRejectsDeactivatedItem(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	it := dueItem(10, 1)
	it.Active = false
	items.On("Get", mock.Anything, int64(10), int64(1)).Return(&it, nil)

	_, err := svc.StartSession(context.Background(), 1, []int64{10}, review.PerQuestion, fixedNow)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
}

func TestStartSessionUnknownItem(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	items.On("Get", mock.Anything, int64(99), int64(1)).Return(nil, nil)

	_, err := svc.StartSession(context.Background(), 1, []int64{99}, review.PerQuestion, fixedNow)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestFinishSessionCommitsAndAwardsProgress(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	it := dueItem(10, 1)
	items.On("Get", mock.Anything, int64(10), int64(1)).Return(&it, nil)
	items.On("CommitReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.SessionRecord{ID: 1, ItemID: 10, AccuracyPercent: 100}, nil)

	learner := &models.Learner{ID: 1, DisplayName: "ana"}
	learners.On("Get", mock.Anything, int64(1)).Return(learner, nil)
	learners.On("UpdateProgress", mock.Anything, mock.MatchedBy(func(l models.Learner) bool {
		// floor(100/10)+5 XP for one perfect item, first activity of the day.
		return l.XP == 15 && l.Streak == 1 && l.LastActiveAt != nil
	})).Return(nil)

	sess, err := svc.StartSession(context.Background(), 1, []int64{10}, review.PerQuestion, fixedNow)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), sess.ID, "q1", "Paris", models.RatingEasy, 4)
	require.NoError(t, err)

	outcomes, err := svc.FinishSession(context.Background(), sess.ID, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Committed())

	// Finished sessions leave the registry.
	_, err = svc.GetSession(context.Background(), sess.ID)
	assert.Error(t, err)

	learners.AssertExpectations(t)
}

func TestFinishSessionSameDayKeepsStreak(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	it := dueItem(10, 1)
	items.On("Get", mock.Anything, int64(10), int64(1)).Return(&it, nil)
	items.On("CommitReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.SessionRecord{ID: 1, ItemID: 10, AccuracyPercent: 0}, nil)

	earlierToday := fixedNow.Add(-2 * time.Hour)
	learner := &models.Learner{ID: 1, Streak: 4, LastActiveAt: &earlierToday}
	learners.On("Get", mock.Anything, int64(1)).Return(learner, nil)
	learners.On("UpdateProgress", mock.Anything, mock.MatchedBy(func(l models.Learner) bool {
		return l.Streak == 4
	})).Return(nil)

	sess, err := svc.StartSession(context.Background(), 1, []int64{10}, review.PerQuestion, fixedNow)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), sess.ID, "q1", "Lyon", models.RatingHard, 4)
	require.NoError(t, err)

	_, err = svc.FinishSession(context.Background(), sess.ID, fixedNow)
	require.NoError(t, err)
	learners.AssertExpectations(t)
}

func TestFinishSessionMapsVersionConflict(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	it := dueItem(10, 1)
	items.On("Get", mock.Anything, int64(10), int64(1)).Return(&it, nil)
	items.On("CommitReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.SessionRecord{}, repository.ErrVersionConflict)

	sess, err := svc.StartSession(context.Background(), 1, []int64{10}, review.PerQuestion, fixedNow)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), sess.ID, "q1", "Paris", models.RatingEasy, 4)
	require.NoError(t, err)

	outcomes, err := svc.FinishSession(context.Background(), sess.ID, fixedNow)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	var appErr *apperr.Error
	require.ErrorAs(t, outcomes[0].Err, &appErr)
	assert.Equal(t, apperr.CodeConflict, appErr.Code)

	// No commits, so no progress update.
	learners.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything)
}

func TestDueSetPersistenceError(t *testing.T) {
	items := new(mocks.MockItemRepository)
	learners := new(mocks.MockLearnerRepository)
	svc := newReviewService(items, learners)

	items.On("Due", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return(nil, errors.New("disk on fire"))

	_, err := svc.DueSet(context.Background(), 1, fixedNow, 0, 0)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodePersistence, appErr.Code)
}
