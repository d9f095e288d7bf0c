package models

import "time"

// Note is the study material a review item was generated from. Question
// generation happens upstream; this service only stores the source note.
type Note struct {
	ID         int64     `json:"id"`
	LearnerID  int64     `json:"learner_id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	Tags       []string  `json:"tags"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ItemStats summarizes recent review history for a single item.
type ItemStats struct {
	ItemID          int64           `json:"item_id"`
	TotalSessions   int             `json:"total_sessions"`
	AverageAccuracy float64         `json:"average_accuracy"`
	Scheduling      SchedulingState `json:"scheduling"`
	RecentSessions  []SessionRecord `json:"recent_sessions"`
}
