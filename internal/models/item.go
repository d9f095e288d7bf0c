package models

import "time"

// ItemKind identifies how an item's questions are presented and graded.
type ItemKind string

const (
	KindFlashcard ItemKind = "flashcard"
	KindMCQ       ItemKind = "mcq"
	KindFillBlank ItemKind = "fill_blank"
)

func (k ItemKind) Valid() bool {
	switch k {
	case KindFlashcard, KindMCQ, KindFillBlank:
		return true
	}
	return false
}

// Question is immutable once generated; scheduling never mutates it.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer"`
}

// SchedulingState is the per-item SM-2 record. It is mutated only by the
// scheduler, exactly once per committed review session.
type SchedulingState struct {
	EasinessFactor  float64   `json:"easiness_factor"`
	IntervalDays    int       `json:"interval_days"`
	RepetitionCount int       `json:"repetition_count"`
	LastReviewedAt  time.Time `json:"last_reviewed_at"`
	NextReviewAt    time.Time `json:"next_review_at"`
}

// ReviewItem is a quiz-like unit owned by exactly one learner. Version is
// the optimistic-lock counter guarding scheduling updates.
type ReviewItem struct {
	ID         int64           `json:"id"`
	LearnerID  int64           `json:"learner_id"`
	NoteID     int64           `json:"note_id"`
	Kind       ItemKind        `json:"kind"`
	Questions  []Question      `json:"questions"`
	Scheduling SchedulingState `json:"scheduling"`
	Version    int64           `json:"version"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
}

// QuestionByID returns the question with the given id, or nil.
func (it *ReviewItem) QuestionByID(id string) *Question {
	for i := range it.Questions {
		if it.Questions[i].ID == id {
			return &it.Questions[i]
		}
	}
	return nil
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	Kind          ItemKind
	NoteID        int64
	IncludeHidden bool
	Limit         int
	Offset        int
}
