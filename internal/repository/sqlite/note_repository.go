package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
)

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository implementation
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Get(ctx context.Context, id int64, learnerID int64) (*models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("getting note: id=%d, learner_id=%d", id, learnerID)

	var n models.Note
	var tags string
	err := r.db.QueryRowContext(ctx, `
SELECT id, learner_id, filename, content, file_type, file_size, tags, uploaded_at
FROM notes
WHERE id = ? AND learner_id = ?
`, id, learnerID).Scan(&n.ID, &n.LearnerID, &n.Filename, &n.Content, &n.FileType, &n.FileSize, &tags, &n.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("note not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get note: %v", err)
		return nil, err
	}
	if err := unmarshalJSON(tags, &n.Tags); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noteRepository) List(ctx context.Context, learnerID int64) ([]models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("listing notes: learner_id=%d", learnerID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, learner_id, filename, content, file_type, file_size, tags, uploaded_at
FROM notes
WHERE learner_id = ?
ORDER BY uploaded_at DESC
`, learnerID)
	if err != nil {
		log.Error("failed to list notes: %v", err)
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var tags string
		if err := rows.Scan(&n.ID, &n.LearnerID, &n.Filename, &n.Content, &n.FileType, &n.FileSize, &tags, &n.UploadedAt); err != nil {
			log.Error("failed to scan note row: %v", err)
			return nil, err
		}
		if err := unmarshalJSON(tags, &n.Tags); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Insert(ctx context.Context, n models.Note) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("inserting note: learner_id=%d, filename=%s", n.LearnerID, n.Filename)

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := marshalJSON(tags)
	if err != nil {
		return 0, err
	}

	fileType := n.FileType
	if fileType == "" {
		fileType = "text"
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO notes (learner_id, filename, content, file_type, file_size, tags)
VALUES (?, ?, ?, ?, ?, ?)
`, n.LearnerID, n.Filename, n.Content, fileType, n.FileSize, tagsJSON)
	if err != nil {
		log.Error("failed to insert note: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	log.Debug("note inserted: id=%d", id)
	return id, nil
}

func (r *noteRepository) Delete(ctx context.Context, id int64, learnerID int64) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("deleting note: id=%d, learner_id=%d", id, learnerID)

	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND learner_id = ?`, id, learnerID)
	if err != nil {
		log.Error("failed to delete note: %v", err)
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
