package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
)

type learnerRepository struct {
	db *sql.DB
}

// NewLearnerRepository creates a new LearnerRepository implementation
func NewLearnerRepository(db *sql.DB) repository.LearnerRepository {
	return &learnerRepository{db: db}
}

func (r *learnerRepository) Get(ctx context.Context, id int64) (*models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("getting learner: id=%d", id)

	var l models.Learner
	var lastActive sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, display_name, xp, streak, last_active_at, created_at
FROM learners
WHERE id = ?
`, id).Scan(&l.ID, &l.DisplayName, &l.XP, &l.Streak, &lastActive, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learner not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learner: %v", err)
		return nil, err
	}
	if lastActive.Valid {
		l.LastActiveAt = &lastActive.Time
	}
	return &l, nil
}

func (r *learnerRepository) Upsert(ctx context.Context, displayName string) (*models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("upserting learner: display_name=%s", displayName)

	var l models.Learner
	var lastActive sql.NullTime
	err := r.db.QueryRowContext(ctx, `
INSERT INTO learners (display_name)
VALUES (?)
ON CONFLICT(display_name) DO UPDATE SET display_name = excluded.display_name
RETURNING id, display_name, xp, streak, last_active_at, created_at
`, displayName).Scan(&l.ID, &l.DisplayName, &l.XP, &l.Streak, &lastActive, &l.CreatedAt)
	if err != nil {
		log.Error("failed to upsert learner: %v", err)
		return nil, err
	}
	if lastActive.Valid {
		l.LastActiveAt = &lastActive.Time
	}
	log.Debug("learner upserted: id=%d", l.ID)
	return &l, nil
}

func (r *learnerRepository) UpdateProgress(ctx context.Context, l models.Learner) error {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("updating learner progress: id=%d, xp=%d, streak=%d", l.ID, l.XP, l.Streak)

	_, err := r.db.ExecContext(ctx, `
UPDATE learners SET xp = ?, streak = ?, last_active_at = ? WHERE id = ?
`, l.XP, l.Streak, l.LastActiveAt, l.ID)
	if err != nil {
		log.Error("failed to update learner progress: %v", err)
	}
	return err
}

func (r *learnerRepository) Stats(ctx context.Context, id int64) (*models.LearnerStats, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("fetching learner stats: id=%d", id)

	var s models.LearnerStats
	err := r.db.QueryRowContext(ctx, `
SELECT learner_id, total_items, due_today, due_soon, total_sessions, overall_accuracy, refreshed_at
FROM learner_stats
WHERE learner_id = ?
`, id).Scan(&s.LearnerID, &s.TotalItems, &s.DueToday, &s.DueSoon, &s.TotalSessions, &s.OverallAccuracy, &s.RefreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no cached stats for learner %d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learner stats: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *learnerRepository) RefreshStats(ctx context.Context, id int64, todayStart, tomorrowStart, soonEnd time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("refreshing learner stats: id=%d", id)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO learner_stats (learner_id, total_items, due_today, due_soon, total_sessions, overall_accuracy, refreshed_at)
SELECT
    ?,
    (SELECT COUNT(*) FROM review_items WHERE learner_id = ? AND active = 1),
    (SELECT COUNT(*) FROM review_items WHERE learner_id = ? AND active = 1 AND next_review_at >= ? AND next_review_at < ?),
    (SELECT COUNT(*) FROM review_items WHERE learner_id = ? AND active = 1 AND next_review_at >= ? AND next_review_at < ?),
    (SELECT COUNT(*) FROM session_records WHERE learner_id = ?),
    (SELECT COALESCE(AVG(accuracy_percent), 0) FROM session_records WHERE learner_id = ?),
    CURRENT_TIMESTAMP
ON CONFLICT(learner_id) DO UPDATE SET
    total_items = excluded.total_items,
    due_today = excluded.due_today,
    due_soon = excluded.due_soon,
    total_sessions = excluded.total_sessions,
    overall_accuracy = excluded.overall_accuracy,
    refreshed_at = excluded.refreshed_at
`, id, id, id, todayStart, tomorrowStart, id, todayStart, soonEnd, id, id)
	if err != nil {
		log.Error("failed to refresh learner stats: %v", err)
	}
	return err
}
