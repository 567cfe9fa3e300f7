package service

import (
	"context"
	"testing"
	"time"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/repository"
	"certquest_miniapp/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testTenant = "acme-certs"

func badgeWithRequirement(name string, reqType model.RequirementType, value int) *model.BadgeDefinition {
	return &model.BadgeDefinition{
		ID:          uuid.New(),
		Name:        name,
		Requirement: &model.BadgeRequirement{Type: reqType, Value: value},
		CreatedAt:   time.Now().UTC(),
	}
}

func TestBadgeService_Evaluate(t *testing.T) {
	perfectBadge := badgeWithRequirement("Perfectionist", model.RequirementPerfectScore, 1)
	streakBadge := badgeWithRequirement("Week Warrior", model.RequirementStudyStreak, 7)
	brokenBadge := &model.BadgeDefinition{ID: uuid.New(), Name: "No Requirement"}
	unknownBadge := &model.BadgeDefinition{
		ID:          uuid.New(),
		Name:        "From The Future",
		Requirement: &model.BadgeRequirement{Type: "exams_scheduled", Value: 1},
	}
	catalog := []*model.BadgeDefinition{perfectBadge, streakBadge, brokenBadge, unknownBadge}

	tests := []struct {
		name          string
		aggregates    Aggregates
		mockSetup     func(repo *mocks.MockBadgeRepository)
		expectedNames []string
	}{
		{
			name:       "First perfect score awards the badge",
			aggregates: Aggregates{PerfectScores: 1, CurrentStreak: 2},
			mockSetup: func(repo *mocks.MockBadgeRepository) {
				repo.On("GetBadges", mock.Anything).Return(catalog, nil)
				repo.On("GetUserBadges", mock.Anything, int64(42), testTenant).
					Return([]*model.UserBadgeAward{}, nil)
				repo.On("CreateUserBadge", mock.Anything, mock.MatchedBy(func(award *model.UserBadgeAward) bool {
					return award.BadgeID == perfectBadge.ID &&
						award.UserTelegramID == 42 &&
						award.TenantID == testTenant &&
						award.Progress == 100
				})).Return(&model.UserBadgeAward{}, nil)
			},
			expectedNames: []string{"Perfectionist"},
		},
		{
			name:       "Already earned badge is never re-awarded",
			aggregates: Aggregates{PerfectScores: 5, CurrentStreak: 2},
			mockSetup: func(repo *mocks.MockBadgeRepository) {
				repo.On("GetBadges", mock.Anything).Return(catalog, nil)
				repo.On("GetUserBadges", mock.Anything, int64(42), testTenant).
					Return([]*model.UserBadgeAward{
						{UserTelegramID: 42, BadgeID: perfectBadge.ID, TenantID: testTenant},
					}, nil)
			},
			expectedNames: nil,
		},
		{
			name:       "Unsatisfied requirements award nothing",
			aggregates: Aggregates{CurrentStreak: 6},
			mockSetup: func(repo *mocks.MockBadgeRepository) {
				repo.On("GetBadges", mock.Anything).Return(catalog, nil)
				repo.On("GetUserBadges", mock.Anything, int64(42), testTenant).
					Return([]*model.UserBadgeAward{}, nil)
			},
			expectedNames: nil,
		},
		{
			name:       "Stale earned set is caught by the unique key",
			aggregates: Aggregates{PerfectScores: 1},
			mockSetup: func(repo *mocks.MockBadgeRepository) {
				repo.On("GetBadges", mock.Anything).Return(catalog, nil)
				repo.On("GetUserBadges", mock.Anything, int64(42), testTenant).
					Return([]*model.UserBadgeAward{}, nil)
				repo.On("CreateUserBadge", mock.Anything, mock.Anything).
					Return(nil, repository.ErrAlreadyExists)
			},
			expectedNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockBadgeRepository{}
			tt.mockSetup(mockRepo)
			service := NewBadgeService(mockRepo)

			newBadges, err := service.Evaluate(context.Background(), 42, testTenant, tt.aggregates)
			assert.NoError(t, err)

			var names []string
			for _, badge := range newBadges {
				names = append(names, badge.Name)
			}
			assert.Equal(t, tt.expectedNames, names)

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestBadgeService_Evaluate_KindFilter(t *testing.T) {
	lectureBadge := badgeWithRequirement("Bookworm", model.RequirementLecturesRead, 3)
	quizBadge := badgeWithRequirement("Quiz Starter", model.RequirementQuizzesCompleted, 1)

	mockRepo := &mocks.MockBadgeRepository{}
	mockRepo.On("GetBadges", mock.Anything).
		Return([]*model.BadgeDefinition{lectureBadge, quizBadge}, nil)
	mockRepo.On("GetUserBadges", mock.Anything, int64(42), testTenant).
		Return([]*model.UserBadgeAward{}, nil)
	mockRepo.On("CreateUserBadge", mock.Anything, mock.MatchedBy(func(award *model.UserBadgeAward) bool {
		return award.BadgeID == lectureBadge.ID
	})).Return(&model.UserBadgeAward{}, nil)

	service := NewBadgeService(mockRepo)

	// both requirements satisfied, but only the lecture kind is considered
	agg := Aggregates{LecturesRead: 3, QuizzesCompleted: 5}
	newBadges, err := service.Evaluate(context.Background(), 42, testTenant, agg, model.RequirementLecturesRead)

	assert.NoError(t, err)
	assert.Len(t, newBadges, 1)
	assert.Equal(t, "Bookworm", newBadges[0].Name)
	mockRepo.AssertExpectations(t)
}

func TestProgressFor(t *testing.T) {
	badge := badgeWithRequirement("Quiz Master", model.RequirementQuizzesCompleted, 10)

	tests := []struct {
		name       string
		aggregates Aggregates
		earned     bool
		expected   model.BadgeProgress
	}{
		{
			name:       "Partial progress rounds",
			aggregates: Aggregates{QuizzesCompleted: 3},
			expected:   model.BadgeProgress{Current: 3, Required: 10, Percentage: 30},
		},
		{
			name:       "Overshoot caps at 100",
			aggregates: Aggregates{QuizzesCompleted: 25},
			expected:   model.BadgeProgress{Current: 25, Required: 10, Percentage: 100},
		},
		{
			name:       "Earned badge always reports 100",
			aggregates: Aggregates{QuizzesCompleted: 2},
			earned:     true,
			expected:   model.BadgeProgress{Current: 2, Required: 10, Percentage: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProgressFor(badge, tt.aggregates, tt.earned))
		})
	}
}

func TestBadgeService_GetBadgeProgress(t *testing.T) {
	earnedBadge := badgeWithRequirement("Quiz Starter", model.RequirementQuizzesCompleted, 1)
	pendingBadge := badgeWithRequirement("High Achiever", model.RequirementHighScore, 95)

	score := 80
	completed := time.Now().UTC()

	mockRepo := &mocks.MockBadgeRepository{}
	mockRepo.On("GetBadges", mock.Anything).
		Return([]*model.BadgeDefinition{earnedBadge, pendingBadge}, nil)
	mockRepo.On("GetUserBadges", mock.Anything, int64(42), testTenant).
		Return([]*model.UserBadgeAward{
			{UserTelegramID: 42, BadgeID: earnedBadge.ID, TenantID: testTenant},
		}, nil)
	mockRepo.On("GetUserGameStats", mock.Anything, int64(42), testTenant).
		Return(&model.GameStats{UserTelegramID: 42, TenantID: testTenant, CurrentStreak: 1}, nil)
	mockRepo.On("GetUserQuizzes", mock.Anything, int64(42), testTenant).
		Return([]*model.Quiz{
			{Score: &score, CorrectAnswers: 8, CompletedAt: &completed},
		}, nil)
	mockRepo.On("GetUserLectures", mock.Anything, int64(42), testTenant).
		Return([]*model.Lecture{}, nil)

	service := NewBadgeService(mockRepo)

	entries, err := service.GetBadgeProgress(context.Background(), 42, testTenant)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.True(t, entries[0].Earned)
	assert.Equal(t, 100, entries[0].Progress.Percentage)

	assert.False(t, entries[1].Earned)
	assert.Equal(t, 80, entries[1].Progress.Current)
	assert.Equal(t, 84, entries[1].Progress.Percentage)
	assert.Equal(t, "80/95", entries[1].Progress.Text())

	mockRepo.AssertExpectations(t)
}
