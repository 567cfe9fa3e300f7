package model

import (
	"time"

	"github.com/google/uuid"
)

type QuestDefinition struct {
	ID              uuid.UUID
	Title           string
	Description     string
	RequirementType RequirementType
	TargetValue     int
	RewardPoints    int
	TitleReward     *string
	IsActive        bool
	StartsAt        *time.Time
	EndsAt          *time.Time
	CreatedAt       time.Time
}

// InWindow reports whether the quest validity window covers now.
// A nil bound is open-ended.
func (q *QuestDefinition) InWindow(now time.Time) bool {
	if q.StartsAt != nil && now.Before(*q.StartsAt) {
		return false
	}
	if q.EndsAt != nil && now.After(*q.EndsAt) {
		return false
	}
	return true
}

// UserQuestProgress is terminal once IsCompleted is set: no further
// progress writes and no repeat rewards.
type UserQuestProgress struct {
	UserTelegramID int64
	QuestID        uuid.UUID
	TenantID       string
	CurrentValue   int
	IsCompleted    bool
	CompletedAt    *time.Time
}
