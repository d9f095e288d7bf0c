package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/review"
	"github.com/lucasreis/reviewdeck/internal/sm2"
)

var sessionStart = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// fakeCommitter records commits and can fail selected items.
type fakeCommitter struct {
	commits []models.SessionRecord
	states  map[int64]models.SchedulingState
	failFor map[int64]error
	nextID  int64
}

func newFakeCommitter() *fakeCommitter {
	return &fakeCommitter{
		states:  make(map[int64]models.SchedulingState),
		failFor: make(map[int64]error),
	}
}

func (f *fakeCommitter) CommitReview(_ context.Context, item models.ReviewItem, next models.SchedulingState, rec models.SessionRecord) (models.SessionRecord, error) {
	if err := f.failFor[item.ID]; err != nil {
		return models.SessionRecord{}, err
	}
	f.nextID++
	rec.ID = f.nextID
	f.commits = append(f.commits, rec)
	f.states[item.ID] = next
	return rec, nil
}

func testItem(id int64, questions ...models.Question) models.ReviewItem {
	return models.ReviewItem{
		ID:         id,
		LearnerID:  7,
		Kind:       models.KindFlashcard,
		Questions:  questions,
		Scheduling: sm2.DefaultState(sessionStart),
		Version:    1,
		Active:     true,
	}
}

func TestSession_EmptyBatch(t *testing.T) {
	s := review.New(7, nil, review.PerQuestion, sessionStart)
	assert.True(t, s.Empty())
	assert.Equal(t, review.PhaseEmpty, s.Phase())

	outcomes, err := s.Finalize(context.Background(), newFakeCommitter(), sessionStart)
	require.NoError(t, err, "an empty session is not an error")
	assert.Empty(t, outcomes)
}

func TestSession_PerQuestionFlow(t *testing.T) {
	items := []models.ReviewItem{
		testItem(1,
			models.Question{ID: "q1", Prompt: "2+2?", Answer: "4"},
			models.Question{ID: "q2", Prompt: "3+3?", Answer: "6"},
		),
		testItem(2, models.Question{ID: "q3", Prompt: "Capital of France?", Answer: "Paris"}),
	}
	s := review.New(7, items, review.PerQuestion, sessionStart)

	item, q, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "q1", q.ID)

	res, err := s.SubmitAnswer("q1", " 4 ", models.RatingEasy, 3)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, "4", res.CanonicalAnswer)

	res, err = s.SubmitAnswer("q2", "7", models.RatingHard, 5)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)

	res, err = s.SubmitAnswer("q3", "paris", models.RatingEasy, 2)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)

	assert.Equal(t, review.PhaseFinalizing, s.Phase())

	committer := newFakeCommitter()
	end := sessionStart.Add(90 * time.Second)
	outcomes, err := s.Finalize(context.Background(), committer, end)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, review.PhaseCommitted, s.Phase())

	// Item 1: one easy, one hard answer, 1/2 correct. Mean signal = 2, a
	// medium band update.
	first := outcomes[0]
	assert.True(t, first.Committed())
	assert.Equal(t, int64(1), first.ItemID)
	assert.InDelta(t, 2.35, first.State.EasinessFactor, 1e-9)
	assert.Equal(t, 0, first.State.RepetitionCount)
	assert.Equal(t, 1, first.State.IntervalDays)
	require.NotNil(t, first.Record)
	assert.Equal(t, 2, first.Record.TotalQuestions)
	assert.Equal(t, 1, first.Record.CorrectCount)
	assert.InDelta(t, 50, first.Record.AccuracyPercent, 1e-9)
	assert.InDelta(t, 90, first.Record.DurationSeconds, 1e-9)

	// Item 2: single easy rating, signal 3.
	second := outcomes[1]
	assert.True(t, second.Committed())
	assert.InDelta(t, 2.6, second.State.EasinessFactor, 1e-9)
	assert.Equal(t, 1, second.State.RepetitionCount)
	assert.InDelta(t, 100, second.Record.AccuracyPercent, 1e-9)
}

func TestSession_PerItemFlow(t *testing.T) {
	items := []models.ReviewItem{
		testItem(1,
			models.Question{ID: "q1", Answer: "a"},
			models.Question{ID: "q2", Answer: "b"},
		),
	}
	s := review.New(7, items, review.PerItem, sessionStart)

	_, err := s.SubmitAnswer("q1", "a", "", 1)
	require.NoError(t, err)

	// Rating with the answer is rejected in per-item mode.
	_, err = s.SubmitAnswer("q2", "b", models.RatingEasy, 1)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)

	_, err = s.SubmitAnswer("q2", "b", "", 1)
	require.NoError(t, err)
	assert.Equal(t, review.PhaseAwaitingRating, s.Phase())

	// Answers cannot be submitted while the item awaits its rating.
	_, err = s.SubmitAnswer("q2", "b", "", 1)
	assert.Error(t, err)

	require.NoError(t, s.RateItem(models.RatingMedium))
	assert.Equal(t, review.PhaseFinalizing, s.Phase())

	committer := newFakeCommitter()
	outcomes, err := s.Finalize(context.Background(), committer, sessionStart.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Committed())

	// The single item rating backfills every answer and is the signal.
	for _, a := range outcomes[0].Record.Answers {
		assert.Equal(t, models.RatingMedium, a.Rating)
	}
	assert.InDelta(t, 2.35, outcomes[0].State.EasinessFactor, 1e-9)
	assert.Equal(t, 1, outcomes[0].State.IntervalDays)
}

func TestSession_InvalidRatingRejectedWithoutMutation(t *testing.T) {
	items := []models.ReviewItem{testItem(1, models.Question{ID: "q1", Answer: "a"})}
	s := review.New(7, items, review.PerQuestion, sessionStart)

	_, err := s.SubmitAnswer("q1", "a", "impossible", 1)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)

	// The question is still presentable: nothing advanced.
	_, q, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)
}

func TestSession_UnknownAndOutOfTurnQuestions(t *testing.T) {
	items := []models.ReviewItem{testItem(1,
		models.Question{ID: "q1", Answer: "a"},
		models.Question{ID: "q2", Answer: "b"},
	)}
	s := review.New(7, items, review.PerQuestion, sessionStart)

	_, err := s.SubmitAnswer("missing", "x", models.RatingEasy, 1)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)

	_, err = s.SubmitAnswer("q2", "b", models.RatingEasy, 1)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code, "answering out of order is rejected")
}

func TestSession_AbandonPersistsNothing(t *testing.T) {
	items := []models.ReviewItem{
		testItem(1, models.Question{ID: "q1", Answer: "a"}),
		testItem(2, models.Question{ID: "q2", Answer: "b"}),
	}
	s := review.New(7, items, review.PerQuestion, sessionStart)

	_, err := s.SubmitAnswer("q1", "a", models.RatingEasy, 1)
	require.NoError(t, err)

	s.Abandon()
	assert.Equal(t, review.PhaseAbandoned, s.Phase())

	committer := newFakeCommitter()
	_, err = s.Finalize(context.Background(), committer, sessionStart.Add(time.Minute))
	assert.Error(t, err, "an abandoned session cannot be finalized")
	assert.Empty(t, committer.commits)
}

func TestSession_PartialCommitReportedPerItem(t *testing.T) {
	items := []models.ReviewItem{
		testItem(1, models.Question{ID: "q1", Answer: "a"}),
		testItem(2, models.Question{ID: "q2", Answer: "b"}),
	}
	s := review.New(7, items, review.PerQuestion, sessionStart)

	_, err := s.SubmitAnswer("q1", "a", models.RatingEasy, 1)
	require.NoError(t, err)
	_, err = s.SubmitAnswer("q2", "b", models.RatingEasy, 1)
	require.NoError(t, err)

	committer := newFakeCommitter()
	storeErr := apperr.Persistence(errors.New("disk full"))
	committer.failFor[2] = storeErr

	outcomes, err := s.Finalize(context.Background(), committer, sessionStart.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Committed())
	assert.False(t, outcomes[1].Committed())
	assert.ErrorIs(t, outcomes[1].Err, storeErr)
	assert.Equal(t, review.PhaseFailed, s.Phase())

	// Item 1 committed despite item 2 failing; item 2 kept its old state.
	assert.Len(t, committer.commits, 1)
	assert.Equal(t, items[1].Scheduling, outcomes[1].State)
}

func TestSession_FinalizeIsTerminal(t *testing.T) {
	items := []models.ReviewItem{testItem(1, models.Question{ID: "q1", Answer: "a"})}
	s := review.New(7, items, review.PerQuestion, sessionStart)

	_, err := s.SubmitAnswer("q1", "a", models.RatingEasy, 1)
	require.NoError(t, err)

	committer := newFakeCommitter()
	_, err = s.Finalize(context.Background(), committer, sessionStart.Add(time.Minute))
	require.NoError(t, err)

	_, err = s.Finalize(context.Background(), committer, sessionStart.Add(2*time.Minute))
	assert.Error(t, err, "a committed session cannot be finalized twice")
	assert.Len(t, committer.commits, 1, "the scheduling update is applied exactly once")
}

func TestRegistry_TTL(t *testing.T) {
	reg := review.NewRegistry(50 * time.Millisecond)
	s := review.New(7, nil, review.PerQuestion, sessionStart)
	reg.Put(s)

	got, ok := reg.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	time.Sleep(60 * time.Millisecond)
	_, ok = reg.Get(s.ID)
	assert.False(t, ok, "expired sessions are pruned on access")

	reg.Put(s)
	reg.Remove(s.ID)
	_, ok = reg.Get(s.ID)
	assert.False(t, ok)
}
