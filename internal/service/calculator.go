package service

import (
	"time"

	"certquest_miniapp/internal/model"
)

const (
	BaseCompletionPoints = 10
	PointsPerCorrect     = 5
	PassingBonus         = 25
	PerfectBonus         = 50
	PassingScore         = 85
	MaxScore             = 100

	PointsPerLevel    = 100
	LectureReadPoints = 5
)

// QuizPoints computes the points earned by a single quiz attempt. An
// attempt without a completion timestamp or a graded score earns nothing.
// The passing and perfect bonuses stack: a perfect score gets both.
func QuizPoints(quiz *model.Quiz) int {
	if !quiz.Completed() {
		return 0
	}

	points := BaseCompletionPoints + quiz.CorrectAnswers*PointsPerCorrect
	if *quiz.Score >= PassingScore || quiz.Passed {
		points += PassingBonus
	}
	if *quiz.Score == MaxScore {
		points += PerfectBonus
	}

	return points
}

// PointsRequiredForLevel returns the cumulative points threshold at which
// a user reaches the given level.
func PointsRequiredForLevel(level int) int {
	return (level - 1) * PointsPerLevel
}

// LevelForPoints maps a cumulative point total to a level and the
// threshold for the next level. Total and monotonic in totalPoints.
func LevelForPoints(totalPoints int) (level int, nextLevelPoints int) {
	if totalPoints < 0 {
		totalPoints = 0
	}
	level = totalPoints/PointsPerLevel + 1
	return level, PointsRequiredForLevel(level + 1)
}

type StreakUpdate struct {
	CurrentStreak int
	Broken        bool
}

// AdvanceStreak computes the new consecutive-activity streak. Dates are
// normalized to midnight before differencing, so repeat activity on the
// same calendar day leaves the streak unchanged.
//
// Streak freezes credited by daily rewards are not consumed here: a gap
// of two or more days always resets the streak regardless of the
// freeze balance on GameStats.
func AdvanceStreak(previousStreak int, lastActivity *time.Time, now time.Time) StreakUpdate {
	if lastActivity == nil {
		return StreakUpdate{CurrentStreak: 1}
	}

	days := int(midnight(now).Sub(midnight(*lastActivity)).Hours() / 24)
	switch {
	case days <= 0:
		return StreakUpdate{CurrentStreak: previousStreak}
	case days == 1:
		return StreakUpdate{CurrentStreak: previousStreak + 1}
	default:
		return StreakUpdate{CurrentStreak: 1, Broken: true}
	}
}

// midnight truncates to the start of the UTC calendar day. Stored
// timestamps can scan back in other locations; bucketing in UTC keeps
// the day difference independent of where the value came from.
func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
