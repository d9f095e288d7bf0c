package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/sm2"
)

// Phase is the tagged state of a review session.
type Phase int

const (
	// PhaseEmpty is the distinguished terminal state for a session started
	// with no due items. It is not an error; the learner may retry later.
	PhaseEmpty Phase = iota
	// PhasePresenting exposes one question and accepts exactly one answer.
	PhasePresenting
	// PhaseAwaitingRating waits for a single per-item rating after the
	// item's last question (per-item granularity only).
	PhaseAwaitingRating
	// PhaseFinalizing means every item has been walked; the session is
	// waiting for Finalize to commit results.
	PhaseFinalizing
	// PhaseCommitted means every touched item was updated and recorded.
	PhaseCommitted
	// PhaseFailed means at least one item's commit failed. Items committed
	// before the failure stay committed.
	PhaseFailed
	// PhaseAbandoned means the session ended before Finalize; nothing was
	// persisted.
	PhaseAbandoned
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhasePresenting:
		return "presenting"
	case PhaseAwaitingRating:
		return "awaiting_rating"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseCommitted:
		return "committed"
	case PhaseFailed:
		return "failed"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Granularity selects whether difficulty ratings are collected per question
// or once per item. Either way, commit folds every collected rating for an
// item into one mean signal.
type Granularity int

const (
	PerQuestion Granularity = iota
	PerItem
)

// SubmitResult is returned to the caller after grading one answer.
type SubmitResult struct {
	IsCorrect       bool   `json:"is_correct"`
	CanonicalAnswer string `json:"canonical_answer"`
}

// ItemOutcome is the per-item result of Finalize. Err is nil when the item's
// scheduling update and session record were committed together.
type ItemOutcome struct {
	ItemID int64
	State  models.SchedulingState
	Record *models.SessionRecord
	Err    error
}

// Committed reports whether this item's writes were applied.
func (o ItemOutcome) Committed() bool { return o.Err == nil }

// Committer persists one item's scheduling update together with its session
// record. Both writes must be applied atomically; a version-check failure
// must surface as a conflict error.
type Committer interface {
	CommitReview(ctx context.Context, item models.ReviewItem, next models.SchedulingState, rec models.SessionRecord) (models.SessionRecord, error)
}

// Session walks a learner through a batch of due items. It holds a snapshot
// of the items and buffers answers and ratings in memory; nothing touches
// storage until Finalize, so abandoning a session has no persisted effect.
type Session struct {
	ID          string
	LearnerID   int64
	Granularity Granularity
	StartedAt   time.Time

	mu          sync.Mutex
	items       []models.ReviewItem
	phase       Phase
	itemIdx     int
	questionIdx int
	answers     map[int64][]models.Answer
	ratings     map[int64][]models.Rating
}

// New creates a session over a snapshot of due items. An empty batch yields
// a session already in PhaseEmpty.
func New(learnerID int64, items []models.ReviewItem, granularity Granularity, now time.Time) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		LearnerID:   learnerID,
		Granularity: granularity,
		StartedAt:   now,
		items:       items,
		answers:     make(map[int64][]models.Answer),
		ratings:     make(map[int64][]models.Rating),
	}
	if len(items) == 0 {
		s.phase = PhaseEmpty
	} else {
		s.phase = PhasePresenting
	}
	return s
}

// Phase returns the session's current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Empty reports whether the session started with no due items.
func (s *Session) Empty() bool {
	return s.Phase() == PhaseEmpty
}

// Items returns the session's item snapshot.
func (s *Session) Items() []models.ReviewItem {
	return s.items
}

// Current returns the item and question being presented.
func (s *Session) Current() (*models.ReviewItem, *models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePresenting {
		return nil, nil, apperr.Validation("session", "no question is being presented in phase "+s.phase.String())
	}
	item := &s.items[s.itemIdx]
	return item, &item.Questions[s.questionIdx], nil
}

// SubmitAnswer grades exactly one answer for the current question and
// advances the session. In per-question mode a valid rating is required with
// the answer; in per-item mode the rating must be left empty and supplied
// once via RateItem after the item's last question.
func (s *Session) SubmitAnswer(questionID, text string, rating models.Rating, timeSpentSeconds float64) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePresenting {
		return nil, apperr.Validation("session", "not accepting answers in phase "+s.phase.String())
	}

	item := &s.items[s.itemIdx]
	q := item.Questions[s.questionIdx]
	if q.ID != questionID {
		if item.QuestionByID(questionID) == nil {
			return nil, apperr.NotFound("question", questionID)
		}
		return nil, apperr.Validation("question_id", "not the question currently presented")
	}

	switch s.Granularity {
	case PerQuestion:
		if !rating.Valid() {
			return nil, apperr.Validation("rating", "must be one of easy, medium, hard")
		}
	case PerItem:
		if rating != "" {
			return nil, apperr.Validation("rating", "per-item sessions rate after the item, not per question")
		}
	}

	correct := Grade(q, text)
	s.answers[item.ID] = append(s.answers[item.ID], models.Answer{
		QuestionID:       q.ID,
		SubmittedText:    text,
		IsCorrect:        correct,
		Rating:           rating,
		TimeSpentSeconds: timeSpentSeconds,
	})
	if s.Granularity == PerQuestion {
		s.ratings[item.ID] = append(s.ratings[item.ID], rating)
	}

	s.advanceQuestion()
	return &SubmitResult{IsCorrect: correct, CanonicalAnswer: q.Answer}, nil
}

// RateItem records the single difficulty rating for the item just completed
// (per-item granularity) and advances to the next item. The item's buffered
// answers inherit the rating.
func (s *Session) RateItem(rating models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingRating {
		return apperr.Validation("session", "no item is awaiting a rating in phase "+s.phase.String())
	}
	if !rating.Valid() {
		return apperr.Validation("rating", "must be one of easy, medium, hard")
	}

	item := &s.items[s.itemIdx]
	s.ratings[item.ID] = append(s.ratings[item.ID], rating)
	for i := range s.answers[item.ID] {
		s.answers[item.ID][i].Rating = rating
	}

	s.advanceItem()
	return nil
}

// advanceQuestion moves past the question just answered. Callers hold mu.
func (s *Session) advanceQuestion() {
	item := &s.items[s.itemIdx]
	if s.questionIdx < len(item.Questions)-1 {
		s.questionIdx++
		return
	}
	if s.Granularity == PerItem {
		s.phase = PhaseAwaitingRating
		return
	}
	s.advanceItem()
}

// advanceItem moves past the item just completed. Callers hold mu.
func (s *Session) advanceItem() {
	if s.itemIdx < len(s.items)-1 {
		s.itemIdx++
		s.questionIdx = 0
		s.phase = PhasePresenting
		return
	}
	s.phase = PhaseFinalizing
}

// Abandon terminates the session without persisting anything. Abandoning a
// terminal session is a no-op.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseCommitted, PhaseFailed, PhaseEmpty:
		return
	}
	s.phase = PhaseAbandoned
}

// Finalize commits every touched item: it folds the item's ratings into one
// mean signal, applies the scheduling update, and asks the committer to
// persist the new state together with the session record. Outcomes are
// reported per item; a failure on one item does not roll back items already
// committed. An item answered but never rated fails with a validation error
// and no writes.
func (s *Session) Finalize(ctx context.Context, committer Committer, now time.Time) ([]ItemOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseEmpty:
		return nil, nil
	case PhaseCommitted, PhaseFailed, PhaseAbandoned:
		return nil, apperr.Validation("session", "already terminated in phase "+s.phase.String())
	}

	duration := now.Sub(s.StartedAt).Seconds()
	outcomes := make([]ItemOutcome, 0, len(s.items))
	failed := false

	for i := range s.items {
		item := s.items[i]
		answers := s.answers[item.ID]
		ratings := s.ratings[item.ID]
		if len(answers) == 0 && len(ratings) == 0 {
			continue
		}

		if len(ratings) == 0 {
			outcomes = append(outcomes, ItemOutcome{
				ItemID: item.ID,
				State:  item.Scheduling,
				Err:    apperr.Validation("rating", "item has answers but no difficulty rating"),
			})
			failed = true
			continue
		}

		correct := 0
		for _, a := range answers {
			if a.IsCorrect {
				correct++
			}
		}
		total := len(item.Questions)
		rec := models.SessionRecord{
			ItemID:          item.ID,
			LearnerID:       s.LearnerID,
			StartedAt:       s.StartedAt,
			DurationSeconds: duration,
			Answers:         answers,
			TotalQuestions:  total,
			CorrectCount:    correct,
			AccuracyPercent: 100 * float64(correct) / float64(total),
		}

		next := sm2.Update(item.Scheduling, sm2.MeanSignal(ratings), now)
		saved, err := committer.CommitReview(ctx, item, next, rec)
		if err != nil {
			outcomes = append(outcomes, ItemOutcome{ItemID: item.ID, State: item.Scheduling, Err: err})
			failed = true
			continue
		}
		outcomes = append(outcomes, ItemOutcome{ItemID: item.ID, State: next, Record: &saved})
	}

	if failed {
		s.phase = PhaseFailed
	} else {
		s.phase = PhaseCommitted
	}
	return outcomes, nil
}
