package models

import "time"

// Learner is the owner of notes and review items. Authentication is handled
// upstream; this service only resolves learners by id.
type Learner struct {
	ID           int64      `json:"id"`
	DisplayName  string     `json:"display_name"`
	XP           int        `json:"xp"`
	Streak       int        `json:"streak"`
	LastActiveAt *time.Time `json:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// LearnerStats is the cached dashboard summary refreshed by a background job.
type LearnerStats struct {
	LearnerID       int64     `json:"learner_id"`
	TotalItems      int       `json:"total_items"`
	DueToday        int       `json:"due_today"`
	DueSoon         int       `json:"due_soon"`
	TotalSessions   int       `json:"total_sessions"`
	OverallAccuracy float64   `json:"overall_accuracy"`
	RefreshedAt     time.Time `json:"refreshed_at"`
}
