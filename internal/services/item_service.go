package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
	"github.com/lucasreis/reviewdeck/internal/sm2"
)

// ItemService handles review-item CRUD and per-item statistics. Items arrive
// fully formed (question authoring happens upstream); this service assigns
// ids and the initial scheduling state.
type ItemService interface {
	Create(ctx context.Context, item models.ReviewItem, now time.Time) (*models.ReviewItem, error)
	Get(ctx context.Context, id int64, learnerID int64) (*models.ReviewItem, error)
	List(ctx context.Context, learnerID int64, filter models.ItemFilter) ([]models.ReviewItem, error)
	Deactivate(ctx context.Context, id int64, learnerID int64) error
	Stats(ctx context.Context, id int64, learnerID int64) (*models.ItemStats, error)
}

type itemService struct {
	items        repository.ItemRepository
	sessions     repository.SessionRepository
	historyLimit int
}

// NewItemService creates a new ItemService
func NewItemService(items repository.ItemRepository, sessions repository.SessionRepository, historyLimit int) ItemService {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &itemService{items: items, sessions: sessions, historyLimit: historyLimit}
}

func (s *itemService) Create(ctx context.Context, item models.ReviewItem, now time.Time) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx)

	if !item.Kind.Valid() {
		return nil, apperr.Validation("kind", "must be one of flashcard, mcq, fill_blank")
	}
	if len(item.Questions) == 0 {
		return nil, apperr.Validation("questions", "at least one question is required")
	}
	seen := make(map[string]bool, len(item.Questions))
	for i := range item.Questions {
		q := &item.Questions[i]
		if q.Prompt == "" {
			return nil, apperr.Validation("questions", "question prompt is required")
		}
		if q.Answer == "" {
			return nil, apperr.Validation("questions", "question answer is required")
		}
		if item.Kind == models.KindMCQ && len(q.Options) < 2 {
			return nil, apperr.Validation("questions", "choice questions need at least two options")
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if seen[q.ID] {
			return nil, apperr.Validation("questions", "duplicate question id "+q.ID)
		}
		seen[q.ID] = true
	}

	item.Scheduling = sm2.DefaultState(now)
	item.Active = true
	item.Version = 1

	id, err := s.items.Insert(ctx, item)
	if err != nil {
		log.Error("failed to insert item: %v", err)
		return nil, apperr.Persistence(err)
	}
	item.ID = id
	item.CreatedAt = now
	log.Info("item created: id=%d, learner_id=%d, questions=%d", id, item.LearnerID, len(item.Questions))
	return &item, nil
}

func (s *itemService) Get(ctx context.Context, id int64, learnerID int64) (*models.ReviewItem, error) {
	it, err := s.items.Get(ctx, id, learnerID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if it == nil {
		return nil, apperr.NotFound("review item", id)
	}
	return it, nil
}

func (s *itemService) List(ctx context.Context, learnerID int64, filter models.ItemFilter) ([]models.ReviewItem, error) {
	items, err := s.items.List(ctx, learnerID, filter)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

func (s *itemService) Deactivate(ctx context.Context, id int64, learnerID int64) error {
	log := logger.FromContext(ctx)
	if err := s.items.Deactivate(ctx, id, learnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("review item", id)
		}
		return apperr.Persistence(err)
	}
	log.Info("item deactivated: id=%d", id)
	return nil
}

func (s *itemService) Stats(ctx context.Context, id int64, learnerID int64) (*models.ItemStats, error) {
	it, err := s.Get(ctx, id, learnerID)
	if err != nil {
		return nil, err
	}

	recent, err := s.sessions.ListByItem(ctx, id, s.historyLimit)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	stats := &models.ItemStats{
		ItemID:         it.ID,
		TotalSessions:  len(recent),
		Scheduling:     it.Scheduling,
		RecentSessions: recent,
	}
	if len(recent) > 0 {
		var sum float64
		for _, rec := range recent {
			sum += rec.AccuracyPercent
		}
		stats.AverageAccuracy = sum / float64(len(recent))
	}
	return stats, nil
}
