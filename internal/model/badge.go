package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequirementType discriminates badge and quest requirements.
type RequirementType string

const (
	RequirementQuizzesCompleted  RequirementType = "quizzes_completed"
	RequirementPerfectScore      RequirementType = "perfect_score"
	RequirementStudyStreak       RequirementType = "study_streak"
	RequirementLecturesRead      RequirementType = "lectures_read"
	RequirementHighScore         RequirementType = "high_score"
	RequirementQuestionsAnswered RequirementType = "questions_answered"
	RequirementTotalPoints       RequirementType = "total_points"
)

// Known reports whether t is one of the seven supported requirement kinds.
// Definitions with an unknown kind are skipped during evaluation.
func (t RequirementType) Known() bool {
	switch t {
	case RequirementQuizzesCompleted, RequirementPerfectScore,
		RequirementStudyStreak, RequirementLecturesRead,
		RequirementHighScore, RequirementQuestionsAnswered,
		RequirementTotalPoints:
		return true
	}
	return false
}

type BadgeRequirement struct {
	Type  RequirementType `json:"type"`
	Value int             `json:"value"`
}

// BadgeDefinition is an immutable catalog entry authored out-of-band.
type BadgeDefinition struct {
	ID          uuid.UUID
	Name        string
	Description string
	Icon        string
	Requirement *BadgeRequirement
	CreatedAt   time.Time
}

// UserBadgeAward is created exactly once per (user, badge, tenant).
type UserBadgeAward struct {
	UserTelegramID int64
	BadgeID        uuid.UUID
	TenantID       string
	AwardedAt      time.Time
	Progress       int
	Notified       bool
}

type BadgeProgress struct {
	Current    int
	Required   int
	Percentage int
}

// Text renders the "3/10" style progress label shown next to a badge.
func (p BadgeProgress) Text() string {
	return fmt.Sprintf("%d/%d", p.Current, p.Required)
}

// BadgeProgressEntry is one row of the badge progress display.
type BadgeProgressEntry struct {
	Badge    *BadgeDefinition
	Earned   bool
	Progress BadgeProgress
}
