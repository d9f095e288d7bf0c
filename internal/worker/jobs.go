package worker

import (
	"context"
	"time"

	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/repository"
)

// RefreshLearnerStatsJob recomputes a learner's cached dashboard counters
// after a session commit. The dashboard tolerates stale numbers, so this
// runs off the request path.
type RefreshLearnerStatsJob struct {
	Learners      repository.LearnerRepository
	LearnerID     int64
	TodayStart    time.Time
	TomorrowStart time.Time
	SoonEnd       time.Time
}

func (j *RefreshLearnerStatsJob) Name() string { return "refresh_learner_stats" }

func (j *RefreshLearnerStatsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("learner_id", j.LearnerID)
	if err := j.Learners.RefreshStats(ctx, j.LearnerID, j.TodayStart, j.TomorrowStart, j.SoonEnd); err != nil {
		log.Error("stats refresh failed: %v", err)
		return err
	}
	log.Debug("stats refreshed")
	return nil
}
