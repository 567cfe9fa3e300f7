package model

import "time"

// GameStats is the per-user, per-tenant progress record. It is created
// lazily on the first scored activity and never deleted.
type GameStats struct {
	UserTelegramID    int64
	TenantID          string
	TotalPoints       int
	CurrentStreak     int
	LongestStreak     int
	LastActivityDate  *time.Time
	Level             int
	NextLevelPoints   int
	TotalBadgesEarned int
	StreakFreezes     int

	QuizzesCompleted  int
	LecturesRead      int
	QuestionsAnswered int
	PerfectScores     int
	HighScore         int
}

// NewGameStats returns the well-defined zero state so calculators never
// have to null-coalesce individual fields.
func NewGameStats(userTelegramID int64, tenantID string) *GameStats {
	return &GameStats{
		UserTelegramID:  userTelegramID,
		TenantID:        tenantID,
		Level:           1,
		NextLevelPoints: 100,
	}
}

// GameStatsUpdate is a partial update. Nil fields are left untouched.
// The delta fields are applied as atomic increments by the repository,
// never as read-modify-write.
type GameStatsUpdate struct {
	PointsDelta            *int
	BadgesEarnedDelta      *int
	StreakFreezesDelta     *int
	QuizzesCompletedDelta  *int
	LecturesReadDelta      *int
	QuestionsAnsweredDelta *int
	PerfectScoresDelta     *int

	CurrentStreak    *int
	LongestStreak    *int
	LastActivityDate *time.Time
	Level            *int
	NextLevelPoints  *int
	HighScore        *int
}
