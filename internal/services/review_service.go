package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
	"github.com/lucasreis/reviewdeck/internal/review"
	"github.com/lucasreis/reviewdeck/internal/sm2"
	"github.com/lucasreis/reviewdeck/internal/worker"
)

// ReviewService drives the spaced-repetition core: due-set queries and the
// review session lifecycle. "Due" is always evaluated against the
// caller-supplied current time; there is no background scheduler.
type ReviewService interface {
	DueSet(ctx context.Context, learnerID int64, now time.Time, horizonDays int, minGap time.Duration) ([]models.ReviewItem, error)
	StartSession(ctx context.Context, learnerID int64, itemIDs []int64, granularity review.Granularity, now time.Time) (*review.Session, error)
	GetSession(ctx context.Context, sessionID string) (*review.Session, error)
	SubmitAnswer(ctx context.Context, sessionID, questionID, text string, rating models.Rating, timeSpentSeconds float64) (*review.SubmitResult, error)
	RateItem(ctx context.Context, sessionID string, rating models.Rating) error
	FinishSession(ctx context.Context, sessionID string, now time.Time) ([]review.ItemOutcome, error)
	AbandonSession(ctx context.Context, sessionID string) error
}

type reviewService struct {
	items       repository.ItemRepository
	learners    repository.LearnerRepository
	sessions    *review.Registry
	statsPool   *worker.Pool
	dueSoonDays int
}

// NewReviewService creates a new ReviewService. statsPool may be nil, in
// which case dashboard stats are not refreshed after commits.
func NewReviewService(items repository.ItemRepository, learners repository.LearnerRepository, sessions *review.Registry, statsPool *worker.Pool, dueSoonDays int) ReviewService {
	if dueSoonDays <= 0 {
		dueSoonDays = 3
	}
	return &reviewService{
		items:       items,
		learners:    learners,
		sessions:    sessions,
		statsPool:   statsPool,
		dueSoonDays: dueSoonDays,
	}
}

// midnight returns the start of now's calendar day in now's location.
func midnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// dueWindow returns the half-open review window [start, end) for a horizon.
// A zero horizon means "due today": start of today to start of tomorrow.
func dueWindow(now time.Time, horizonDays int) (time.Time, time.Time) {
	start := midnight(now)
	days := horizonDays
	if days <= 0 {
		days = 1
	}
	return start, start.AddDate(0, 0, days)
}

func (s *reviewService) DueSet(ctx context.Context, learnerID int64, now time.Time, horizonDays int, minGap time.Duration) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading due set: learner_id=%d, horizon_days=%d", learnerID, horizonDays)

	start, end := dueWindow(now, horizonDays)
	items, err := s.items.Due(ctx, learnerID, start, end)
	if err != nil {
		log.Error("failed to load due items: %v", err)
		return nil, apperr.Persistence(err)
	}

	out := items[:0]
	for _, it := range items {
		it.Scheduling = sm2.Normalize(it.Scheduling, now)
		// An optional minimum re-presentation gap keeps items answered
		// moments ago from resurfacing; callers pass it explicitly.
		if minGap > 0 && !it.Scheduling.LastReviewedAt.IsZero() && now.Sub(it.Scheduling.LastReviewedAt) < minGap {
			continue
		}
		out = append(out, it)
	}
	log.Debug("due set loaded: %d items", len(out))
	return out, nil
}

func (s *reviewService) StartSession(ctx context.Context, learnerID int64, itemIDs []int64, granularity review.Granularity, now time.Time) (*review.Session, error) {
	log := logger.FromContext(ctx)

	var items []models.ReviewItem
	if len(itemIDs) == 0 {
		due, err := s.DueSet(ctx, learnerID, now, 0, 0)
		if err != nil {
			return nil, err
		}
		items = due
	} else {
		for _, id := range itemIDs {
			it, err := s.items.Get(ctx, id, learnerID)
			if err != nil {
				return nil, apperr.Persistence(err)
			}
			if it == nil {
				return nil, apperr.NotFound("review item", id)
			}
			if !it.Active {
				return nil, apperr.Validation("item_ids", "item is deactivated")
			}
			it.Scheduling = sm2.Normalize(it.Scheduling, now)
			items = append(items, *it)
		}
	}

	sess := review.New(learnerID, items, granularity, now)
	s.sessions.Put(sess)
	if sess.Empty() {
		log.Debug("session %s started empty for learner %d", sess.ID, learnerID)
	} else {
		log.Info("session %s started: learner_id=%d, items=%d", sess.ID, learnerID, len(items))
	}
	return sess, nil
}

func (s *reviewService) session(sessionID string) (*review.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, apperr.NotFound("session", sessionID)
	}
	return sess, nil
}

func (s *reviewService) GetSession(ctx context.Context, sessionID string) (*review.Session, error) {
	return s.session(sessionID)
}

func (s *reviewService) SubmitAnswer(ctx context.Context, sessionID, questionID, text string, rating models.Rating, timeSpentSeconds float64) (*review.SubmitResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.SubmitAnswer(questionID, text, rating, timeSpentSeconds)
}

func (s *reviewService) RateItem(ctx context.Context, sessionID string, rating models.Rating) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return sess.RateItem(rating)
}

func (s *reviewService) FinishSession(ctx context.Context, sessionID string, now time.Time) ([]review.ItemOutcome, error) {
	log := logger.FromContext(ctx)

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	outcomes, err := sess.Finalize(ctx, s, now)
	if err != nil {
		return nil, err
	}
	s.sessions.Remove(sessionID)

	committed := 0
	for _, o := range outcomes {
		if o.Committed() {
			committed++
		}
	}
	log.Info("session %s finished: %d/%d items committed", sessionID, committed, len(outcomes))

	if committed > 0 {
		if err := s.applyProgress(ctx, sess.LearnerID, outcomes, now); err != nil {
			// Progress is a bonus on top of the committed review; losing it
			// does not fail the session.
			log.Warn("failed to apply learner progress: %v", err)
		}
		s.enqueueStatsRefresh(sess.LearnerID, now)
	}
	return outcomes, nil
}

func (s *reviewService) AbandonSession(ctx context.Context, sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.Abandon()
	s.sessions.Remove(sessionID)
	logger.FromContext(ctx).Info("session %s abandoned", sessionID)
	return nil
}

// CommitReview implements review.Committer over the item repository, mapping
// storage errors to the per-item error kinds callers see.
func (s *reviewService) CommitReview(ctx context.Context, item models.ReviewItem, next models.SchedulingState, rec models.SessionRecord) (models.SessionRecord, error) {
	saved, err := s.items.CommitReview(ctx, item, next, rec)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return models.SessionRecord{}, apperr.Conflict("review item", item.ID)
		}
		return models.SessionRecord{}, apperr.Persistence(err)
	}
	return saved, nil
}

// applyProgress awards XP per committed item and bumps the streak on the
// first commit of a calendar day.
func (s *reviewService) applyProgress(ctx context.Context, learnerID int64, outcomes []review.ItemOutcome, now time.Time) error {
	learner, err := s.learners.Get(ctx, learnerID)
	if err != nil {
		return err
	}
	if learner == nil {
		return apperr.NotFound("learner", learnerID)
	}

	for _, o := range outcomes {
		if !o.Committed() || o.Record == nil {
			continue
		}
		learner.XP += int(math.Floor(o.Record.AccuracyPercent/10)) + 5
	}

	today := midnight(now)
	if learner.LastActiveAt == nil || learner.LastActiveAt.Before(today) {
		learner.Streak++
	}
	learner.LastActiveAt = &now

	return s.learners.UpdateProgress(ctx, *learner)
}

func (s *reviewService) enqueueStatsRefresh(learnerID int64, now time.Time) {
	if s.statsPool == nil {
		return
	}
	todayStart, tomorrowStart := midnight(now), midnight(now).AddDate(0, 0, 1)
	_, soonEnd := dueWindow(now, s.dueSoonDays)
	s.statsPool.Submit(&worker.RefreshLearnerStatsJob{
		Learners:      s.learners,
		LearnerID:     learnerID,
		TodayStart:    todayStart,
		TomorrowStart: tomorrowStart,
		SoonEnd:       soonEnd,
	})
}
