package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
)

// NoteService handles the study-material notes review items derive from.
type NoteService interface {
	Create(ctx context.Context, n models.Note) (*models.Note, error)
	Get(ctx context.Context, id int64, learnerID int64) (*models.Note, error)
	List(ctx context.Context, learnerID int64) ([]models.Note, error)
	Delete(ctx context.Context, id int64, learnerID int64) error
}

type noteService struct {
	notes repository.NoteRepository
}

// NewNoteService creates a new NoteService
func NewNoteService(notes repository.NoteRepository) NoteService {
	return &noteService{notes: notes}
}

var allowedFileTypes = map[string]bool{"pdf": true, "txt": true, "md": true, "text": true}

func (s *noteService) Create(ctx context.Context, n models.Note) (*models.Note, error) {
	log := logger.FromContext(ctx)

	n.Filename = strings.TrimSpace(n.Filename)
	if n.Filename == "" {
		return nil, apperr.Validation("filename", "is required")
	}
	if n.Content == "" {
		return nil, apperr.Validation("content", "is required")
	}
	if n.FileType != "" && !allowedFileTypes[n.FileType] {
		return nil, apperr.Validation("file_type", "must be one of pdf, txt, md, text")
	}

	id, err := s.notes.Insert(ctx, n)
	if err != nil {
		log.Error("failed to insert note: %v", err)
		return nil, apperr.Persistence(err)
	}
	n.ID = id
	log.Info("note created: id=%d, learner_id=%d", id, n.LearnerID)
	return &n, nil
}

func (s *noteService) Get(ctx context.Context, id int64, learnerID int64) (*models.Note, error) {
	n, err := s.notes.Get(ctx, id, learnerID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if n == nil {
		return nil, apperr.NotFound("note", id)
	}
	return n, nil
}

func (s *noteService) List(ctx context.Context, learnerID int64) ([]models.Note, error) {
	notes, err := s.notes.List(ctx, learnerID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return notes, nil
}

func (s *noteService) Delete(ctx context.Context, id int64, learnerID int64) error {
	log := logger.FromContext(ctx)
	if err := s.notes.Delete(ctx, id, learnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("note", id)
		}
		return apperr.Persistence(err)
	}
	log.Info("note deleted: id=%d", id)
	return nil
}
