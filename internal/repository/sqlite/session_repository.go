package sqlite

import (
	"context"
	"database/sql"

	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = "id, item_id, learner_id, started_at, duration_seconds, answers, total_questions, correct_count, accuracy_percent"

func (r *sessionRepository) ListByItem(ctx context.Context, itemID int64, limit int) ([]models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions: item_id=%d, limit=%d", itemID, limit)

	return r.list(ctx, `
SELECT `+sessionColumns+`
FROM session_records
WHERE item_id = ?
ORDER BY started_at DESC
LIMIT ?
`, itemID, normalizeLimit(limit))
}

func (r *sessionRepository) ListByLearner(ctx context.Context, learnerID int64, limit int) ([]models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions: learner_id=%d, limit=%d", learnerID, limit)

	return r.list(ctx, `
SELECT `+sessionColumns+`
FROM session_records
WHERE learner_id = ?
ORDER BY started_at DESC
LIMIT ?
`, learnerID, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		var answers string
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.LearnerID, &rec.StartedAt, &rec.DurationSeconds,
			&answers, &rec.TotalQuestions, &rec.CorrectCount, &rec.AccuracyPercent); err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		if err := unmarshalJSON(answers, &rec.Answers); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
