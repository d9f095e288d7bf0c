package sm2

import (
	"math"
	"time"

	"github.com/lucasreis/reviewdeck/internal/models"
)

const (
	// MinEasiness is the hard floor for the easiness factor.
	MinEasiness = 1.3
	// DefaultEasiness is the easiness assigned to new items.
	DefaultEasiness = 2.5

	day = 24 * time.Hour
)

// DefaultState returns the scheduling state assigned to a freshly created
// item: due immediately, one-day interval, no repetitions.
func DefaultState(now time.Time) models.SchedulingState {
	return models.SchedulingState{
		EasinessFactor:  DefaultEasiness,
		IntervalDays:    1,
		RepetitionCount: 0,
		LastReviewedAt:  now,
		NextReviewAt:    now,
	}
}

// Normalize repairs a state loaded from storage. Items created before
// scheduling existed carry zero values; they get the default state so Update
// never sees an uninitialized record.
func Normalize(s models.SchedulingState, now time.Time) models.SchedulingState {
	if s.EasinessFactor == 0 && s.LastReviewedAt.IsZero() {
		return DefaultState(now)
	}
	if s.EasinessFactor < MinEasiness {
		s.EasinessFactor = MinEasiness
	}
	if s.IntervalDays < 1 {
		s.IntervalDays = 1
	}
	if s.RepetitionCount < 0 {
		s.RepetitionCount = 0
	}
	return s
}

// Update applies one review outcome to a scheduling state and returns the
// next state. signal is the mean numeric rating for the item (easy=3,
// medium=2, hard=1). The function is total: any signal below 3 that is not
// exactly 2 lands in the hard band.
//
// An easy review raises easiness and compounds the interval through it; a
// medium or hard review resets repetitions and collapses the interval to one
// day, so any sign of difficulty restarts the progression.
func Update(s models.SchedulingState, signal float64, now time.Time) models.SchedulingState {
	switch {
	case signal >= 3:
		s.EasinessFactor += 0.1
		s.RepetitionCount++
		if s.RepetitionCount == 1 {
			s.IntervalDays = 1
		} else {
			s.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.EasinessFactor))
		}
	case signal == 2:
		s.EasinessFactor -= 0.15
		s.RepetitionCount = 0
		s.IntervalDays = 1
	default:
		s.EasinessFactor -= 0.2
		s.RepetitionCount = 0
		s.IntervalDays = 1
	}

	if s.EasinessFactor < MinEasiness {
		s.EasinessFactor = MinEasiness
	}

	s.LastReviewedAt = now
	s.NextReviewAt = now.Add(time.Duration(s.IntervalDays) * day)
	return s
}

// MeanSignal folds collected ratings into the single numeric signal fed to
// Update. Per-question and per-item ratings are averaged identically.
func MeanSignal(ratings []models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Signal()
	}
	return sum / float64(len(ratings))
}
