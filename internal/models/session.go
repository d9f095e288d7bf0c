package models

import "time"

// Rating is the learner's difficulty rating for a question or item.
type Rating string

const (
	RatingEasy   Rating = "easy"
	RatingMedium Rating = "medium"
	RatingHard   Rating = "hard"
)

func (r Rating) Valid() bool {
	switch r {
	case RatingEasy, RatingMedium, RatingHard:
		return true
	}
	return false
}

// Signal maps a rating to its numeric SM-2 input value.
func (r Rating) Signal() float64 {
	switch r {
	case RatingEasy:
		return 3
	case RatingMedium:
		return 2
	default:
		return 1
	}
}

// Answer is one graded submission inside a session. It only exists for the
// session's lifetime and is persisted as part of a SessionRecord.
type Answer struct {
	QuestionID       string  `json:"question_id"`
	SubmittedText    string  `json:"submitted_text"`
	IsCorrect        bool    `json:"is_correct"`
	Rating           Rating  `json:"rating"`
	TimeSpentSeconds float64 `json:"time_spent_seconds"`
}

// SessionRecord is the immutable history entry appended per item when a
// review session commits.
type SessionRecord struct {
	ID              int64     `json:"id"`
	ItemID          int64     `json:"item_id"`
	LearnerID       int64     `json:"learner_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Answers         []Answer  `json:"answers"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectCount    int       `json:"correct_count"`
	AccuracyPercent float64   `json:"accuracy_percent"`
}
