package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lucasreis/reviewdeck/internal/models"
)

// ErrVersionConflict is returned by CommitReview when the item's version no
// longer matches the loaded snapshot, meaning another session committed
// first. The caller may reload the item and retry.
var ErrVersionConflict = errors.New("review item version conflict")

// ItemRepository handles review-item data access.
type ItemRepository interface {
	// Get returns the item with its questions, or nil when missing.
	Get(ctx context.Context, id int64, learnerID int64) (*models.ReviewItem, error)
	List(ctx context.Context, learnerID int64, filter models.ItemFilter) ([]models.ReviewItem, error)
	// Due returns active items whose next review falls in [windowStart, windowEnd).
	Due(ctx context.Context, learnerID int64, windowStart, windowEnd time.Time) ([]models.ReviewItem, error)
	Insert(ctx context.Context, item models.ReviewItem) (int64, error)
	Deactivate(ctx context.Context, id int64, learnerID int64) error
	// CommitReview atomically applies the scheduling update (guarded by the
	// item's version) and appends the session record. A stale version yields
	// ErrVersionConflict and no writes.
	CommitReview(ctx context.Context, item models.ReviewItem, next models.SchedulingState, rec models.SessionRecord) (models.SessionRecord, error)
}

// SessionRepository reads committed session history.
type SessionRepository interface {
	ListByItem(ctx context.Context, itemID int64, limit int) ([]models.SessionRecord, error)
	ListByLearner(ctx context.Context, learnerID int64, limit int) ([]models.SessionRecord, error)
}

// LearnerRepository handles learner data access and the cached dashboard
// stats.
type LearnerRepository interface {
	Get(ctx context.Context, id int64) (*models.Learner, error)
	Upsert(ctx context.Context, displayName string) (*models.Learner, error)
	UpdateProgress(ctx context.Context, l models.Learner) error
	Stats(ctx context.Context, id int64) (*models.LearnerStats, error)
	RefreshStats(ctx context.Context, id int64, todayStart, tomorrowStart, soonEnd time.Time) error
}

// NoteRepository handles study-material notes.
type NoteRepository interface {
	Get(ctx context.Context, id int64, learnerID int64) (*models.Note, error)
	List(ctx context.Context, learnerID int64) ([]models.Note, error)
	Insert(ctx context.Context, n models.Note) (int64, error)
	Delete(ctx context.Context, id int64, learnerID int64) error
}
