package model

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is one quiz attempt. Score is nil until the attempt is graded;
// CompletedAt is nil until the attempt is finished.
type Quiz struct {
	ID             uuid.UUID
	UserTelegramID int64
	TenantID       string
	ExamCode       string
	Score          *int
	CorrectAnswers int
	Passed         bool
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// Completed reports whether the attempt was actually finished and graded.
func (q *Quiz) Completed() bool {
	return q != nil && q.CompletedAt != nil && q.Score != nil
}

// Lecture is one generated study-material read record.
type Lecture struct {
	ID             uuid.UUID
	UserTelegramID int64
	TenantID       string
	Topic          string
	ReadAt         time.Time
}
