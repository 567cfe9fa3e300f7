package service

import (
	"testing"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestQuizPoints(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		quiz     *model.Quiz
		expected int
	}{
		{
			name:     "No completion timestamp earns nothing",
			quiz:     &model.Quiz{Score: intPtr(90), CorrectAnswers: 9},
			expected: 0,
		},
		{
			name:     "No graded score earns nothing",
			quiz:     &model.Quiz{CorrectAnswers: 9, CompletedAt: timePtr(now)},
			expected: 0,
		},
		{
			name:     "Base plus per-correct only",
			quiz:     &model.Quiz{Score: intPtr(60), CorrectAnswers: 6, CompletedAt: timePtr(now)},
			expected: 10 + 6*5,
		},
		{
			name:     "Passing bonus at score 85",
			quiz:     &model.Quiz{Score: intPtr(85), CorrectAnswers: 8, CompletedAt: timePtr(now)},
			expected: 10 + 8*5 + 25,
		},
		{
			name:     "Passed flag grants the bonus below 85",
			quiz:     &model.Quiz{Score: intPtr(70), CorrectAnswers: 7, Passed: true, CompletedAt: timePtr(now)},
			expected: 10 + 7*5 + 25,
		},
		{
			name:     "Perfect score stacks passing and perfect bonuses",
			quiz:     &model.Quiz{Score: intPtr(100), CorrectAnswers: 10, CompletedAt: timePtr(now)},
			expected: 135,
		},
		{
			name:     "Zero correct answers still earns the base",
			quiz:     &model.Quiz{Score: intPtr(0), CorrectAnswers: 0, CompletedAt: timePtr(now)},
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuizPoints(tt.quiz))
		})
	}
}

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points        int
		expectedLevel int
		expectedNext  int
	}{
		{0, 1, 100},
		{99, 1, 100},
		{100, 2, 200},
		{250, 3, 300},
		{1000, 11, 1100},
	}

	for _, tt := range tests {
		level, next := LevelForPoints(tt.points)
		assert.Equal(t, tt.expectedLevel, level, "points=%d", tt.points)
		assert.Equal(t, tt.expectedNext, next, "points=%d", tt.points)
		assert.Equal(t, PointsRequiredForLevel(level+1), next, "points=%d", tt.points)
	}
}

func TestLevelForPoints_Monotonic(t *testing.T) {
	previous := 0
	for points := 0; points <= 2000; points += 7 {
		level, _ := LevelForPoints(points)
		assert.GreaterOrEqual(t, level, previous)
		assert.GreaterOrEqual(t, level, 1)
		previous = level
	}
}

func TestAdvanceStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		previousStreak int
		lastActivity   *time.Time
		expected       StreakUpdate
	}{
		{
			name:           "First ever activity starts at one",
			previousStreak: 0,
			lastActivity:   nil,
			expected:       StreakUpdate{CurrentStreak: 1},
		},
		{
			name:           "Same calendar day leaves streak unchanged",
			previousStreak: 5,
			lastActivity:   timePtr(time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)),
			expected:       StreakUpdate{CurrentStreak: 5},
		},
		{
			name:           "One day gap increments",
			previousStreak: 3,
			lastActivity:   timePtr(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)),
			expected:       StreakUpdate{CurrentStreak: 4},
		},
		{
			name:           "Two day gap resets and reports broken",
			previousStreak: 9,
			lastActivity:   timePtr(time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)),
			expected:       StreakUpdate{CurrentStreak: 1, Broken: true},
		},
		{
			// 18:00 at UTC-5 is 23:00 UTC on March 9, one UTC day back
			name:           "Non-UTC stored timestamp buckets by UTC day",
			previousStreak: 2,
			lastActivity:   timePtr(time.Date(2026, 3, 9, 18, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))),
			expected:       StreakUpdate{CurrentStreak: 3},
		},
		{
			name:           "Long gap resets the same way",
			previousStreak: 42,
			lastActivity:   timePtr(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)),
			expected:       StreakUpdate{CurrentStreak: 1, Broken: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AdvanceStreak(tt.previousStreak, tt.lastActivity, now))
		})
	}
}

func TestAdvanceStreak_SameDayIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	last := timePtr(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))

	first := AdvanceStreak(4, last, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AdvanceStreak(first.CurrentStreak, last, now))
	}
}
