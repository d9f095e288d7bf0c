package services

import (
	"context"
	"strings"
	"time"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/repository"
)

// LearnerService resolves learners and serves their dashboard stats.
type LearnerService interface {
	Get(ctx context.Context, id int64) (*models.Learner, error)
	Upsert(ctx context.Context, displayName string) (*models.Learner, error)
	Stats(ctx context.Context, id int64, now time.Time, dueSoonDays int) (*models.LearnerStats, error)
}

type learnerService struct {
	learners repository.LearnerRepository
}

// NewLearnerService creates a new LearnerService
func NewLearnerService(learners repository.LearnerRepository) LearnerService {
	return &learnerService{learners: learners}
}

func (s *learnerService) Get(ctx context.Context, id int64) (*models.Learner, error) {
	l, err := s.learners.Get(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if l == nil {
		return nil, apperr.NotFound("learner", id)
	}
	return l, nil
}

func (s *learnerService) Upsert(ctx context.Context, displayName string) (*models.Learner, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperr.Validation("display_name", "is required")
	}
	l, err := s.learners.Upsert(ctx, displayName)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return l, nil
}

// Stats returns the cached dashboard counters, computing them on first
// access for a learner without a cache row.
func (s *learnerService) Stats(ctx context.Context, id int64, now time.Time, dueSoonDays int) (*models.LearnerStats, error) {
	stats, err := s.learners.Stats(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if stats != nil {
		return stats, nil
	}

	if dueSoonDays <= 0 {
		dueSoonDays = 3
	}
	todayStart := midnight(now)
	if err := s.learners.RefreshStats(ctx, id, todayStart, todayStart.AddDate(0, 0, 1), todayStart.AddDate(0, 0, dueSoonDays)); err != nil {
		return nil, apperr.Persistence(err)
	}
	stats, err = s.learners.Stats(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if stats == nil {
		return &models.LearnerStats{LearnerID: id, RefreshedAt: now}, nil
	}
	return stats, nil
}
