package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository implementation
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = "id, learner_id, note_id, kind, easiness_factor, interval_days, repetition_count, last_reviewed_at, next_review_at, version, active, created_at"

func scanItem(row interface{ Scan(...any) error }) (*models.ReviewItem, error) {
	var it models.ReviewItem
	var lastReviewed, nextReview sql.NullTime
	err := row.Scan(&it.ID, &it.LearnerID, &it.NoteID, &it.Kind,
		&it.Scheduling.EasinessFactor, &it.Scheduling.IntervalDays, &it.Scheduling.RepetitionCount,
		&lastReviewed, &nextReview, &it.Version, &it.Active, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		it.Scheduling.LastReviewedAt = lastReviewed.Time
	}
	if nextReview.Valid {
		it.Scheduling.NextReviewAt = nextReview.Time
	}
	return &it, nil
}

func (r *itemRepository) Get(ctx context.Context, id int64, learnerID int64) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("getting item: id=%d, learner_id=%d", id, learnerID)

	row := r.db.QueryRowContext(ctx, `
SELECT `+itemColumns+`
FROM review_items
WHERE id = ? AND learner_id = ?
`, id, learnerID)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("item not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get item: %v", err)
		return nil, err
	}

	questions, err := r.loadQuestions(ctx, []int64{it.ID})
	if err != nil {
		return nil, err
	}
	it.Questions = questions[it.ID]
	return it, nil
}

func (r *itemRepository) List(ctx context.Context, learnerID int64, filter models.ItemFilter) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("listing items: learner_id=%d", learnerID)

	query := sqlBuilder.Select(itemColumns).
		From("review_items").
		Where(squirrel.Eq{"learner_id": learnerID}).
		OrderBy("created_at DESC")

	if !filter.IncludeHidden {
		query = query.Where(squirrel.Eq{"active": 1})
	}
	if filter.Kind != "" {
		query = query.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.NoteID > 0 {
		query = query.Where(squirrel.Eq{"note_id": filter.NoteID})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query = query.Limit(uint64(limit))
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build list query: %v", err)
		return nil, err
	}
	return r.queryItems(ctx, sqlStr, args...)
}

func (r *itemRepository) Due(ctx context.Context, learnerID int64, windowStart, windowEnd time.Time) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("fetching due items: learner_id=%d, window=[%s, %s)", learnerID,
		windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339))

	// Half-open window: the start instant is due, the end instant is not.
	query := sqlBuilder.Select(itemColumns).
		From("review_items").
		Where(squirrel.Eq{"learner_id": learnerID, "active": 1}).
		Where(squirrel.GtOrEq{"next_review_at": windowStart}).
		Where(squirrel.Lt{"next_review_at": windowEnd}).
		OrderBy("next_review_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build due query: %v", err)
		return nil, err
	}

	items, err := r.queryItems(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d due items", len(items))
	return items, nil
}

func (r *itemRepository) queryItems(ctx context.Context, sqlStr string, args ...any) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.ReviewItem
	var ids []int64
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan item row: %v", err)
			return nil, err
		}
		items = append(items, *it)
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	questions, err := r.loadQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Questions = questions[items[i].ID]
	}
	return items, nil
}

func (r *itemRepository) loadQuestions(ctx context.Context, itemIDs []int64) (map[int64][]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")

	query := sqlBuilder.Select("item_id", "id", "prompt", "options", "answer").
		From("questions").
		Where(squirrel.Eq{"item_id": itemIDs}).
		OrderBy("item_id", "position")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query questions: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]models.Question, len(itemIDs))
	for rows.Next() {
		var itemID int64
		var q models.Question
		var options string
		if err := rows.Scan(&itemID, &q.ID, &q.Prompt, &options, &q.Answer); err != nil {
			log.Error("failed to scan question row: %v", err)
			return nil, err
		}
		if err := unmarshalJSON(options, &q.Options); err != nil {
			return nil, err
		}
		out[itemID] = append(out[itemID], q)
	}
	return out, rows.Err()
}

func (r *itemRepository) Insert(ctx context.Context, item models.ReviewItem) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("inserting item: learner_id=%d, note_id=%d, kind=%s", item.LearnerID, item.NoteID, item.Kind)

	var id int64
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
INSERT INTO review_items (learner_id, note_id, kind, easiness_factor, interval_days, repetition_count, last_reviewed_at, next_review_at, active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, item.LearnerID, item.NoteID, item.Kind,
			item.Scheduling.EasinessFactor, item.Scheduling.IntervalDays, item.Scheduling.RepetitionCount,
			item.Scheduling.LastReviewedAt, item.Scheduling.NextReviewAt, item.Active)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		for i, q := range item.Questions {
			options := q.Options
			if options == nil {
				options = []string{}
			}
			optJSON, err := marshalJSON(options)
			if err != nil {
				return err
			}
			if _, err := t.ExecContext(ctx, `
INSERT INTO questions (id, item_id, position, prompt, options, answer)
VALUES (?, ?, ?, ?, ?, ?)
`, q.ID, id, i, q.Prompt, optJSON, q.Answer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert item: %v", err)
		return 0, err
	}
	log.Debug("item inserted: id=%d", id)
	return id, nil
}

func (r *itemRepository) Deactivate(ctx context.Context, id int64, learnerID int64) error {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("deactivating item: id=%d, learner_id=%d", id, learnerID)

	res, err := r.db.ExecContext(ctx, `
UPDATE review_items SET active = 0 WHERE id = ? AND learner_id = ?
`, id, learnerID)
	if err != nil {
		log.Error("failed to deactivate item: %v", err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *itemRepository) CommitReview(ctx context.Context, item models.ReviewItem, next models.SchedulingState, rec models.SessionRecord) (models.SessionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("committing review: item_id=%d, version=%d, interval=%d, ease=%.2f",
		item.ID, item.Version, next.IntervalDays, next.EasinessFactor)

	answers := rec.Answers
	if answers == nil {
		answers = []models.Answer{}
	}
	answersJSON, err := marshalJSON(answers)
	if err != nil {
		return models.SessionRecord{}, err
	}

	err = tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE review_items
SET easiness_factor = ?, interval_days = ?, repetition_count = ?, last_reviewed_at = ?, next_review_at = ?, version = version + 1
WHERE id = ? AND version = ?
`, next.EasinessFactor, next.IntervalDays, next.RepetitionCount, next.LastReviewedAt, next.NextReviewAt,
			item.ID, item.Version)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return repository.ErrVersionConflict
		}

		ins, err := t.ExecContext(ctx, `
INSERT INTO session_records (item_id, learner_id, started_at, duration_seconds, answers, total_questions, correct_count, accuracy_percent)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ItemID, rec.LearnerID, rec.StartedAt, rec.DurationSeconds, answersJSON,
			rec.TotalQuestions, rec.CorrectCount, rec.AccuracyPercent)
		if err != nil {
			return err
		}
		rec.ID, err = ins.LastInsertId()
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			log.Warn("version conflict on item %d (expected version %d)", item.ID, item.Version)
		} else {
			log.Error("failed to commit review: %v", err)
		}
		return models.SessionRecord{}, err
	}
	log.Debug("review committed: item_id=%d, record_id=%d", item.ID, rec.ID)
	return rec, nil
}
