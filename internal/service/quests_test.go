package service

import (
	"context"
	"testing"
	"time"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeQuest(reqType model.RequirementType, target, reward int, title *string) *model.QuestDefinition {
	return &model.QuestDefinition{
		ID:              uuid.New(),
		Title:           "quest",
		RequirementType: reqType,
		TargetValue:     target,
		RewardPoints:    reward,
		TitleReward:     title,
		IsActive:        true,
	}
}

func TestQuestService_ProcessQuestUpdates_Completion(t *testing.T) {
	title := "Quiz Champion"
	quest := activeQuest(model.RequirementQuizzesCompleted, 5, 50, &title)
	stats := &model.GameStats{UserTelegramID: 42, TotalPoints: 120, Level: 2, QuizzesCompleted: 5}

	mockRepo := &mocks.MockQuestRepository{}
	mockRepo.On("GetActiveQuests", mock.Anything).
		Return([]*model.QuestDefinition{quest}, nil)
	mockRepo.On("GetUserQuestProgress", mock.Anything, int64(42), testTenant).
		Return([]*model.UserQuestProgress{
			{UserTelegramID: 42, QuestID: quest.ID, TenantID: testTenant, CurrentValue: 4},
		}, nil)
	mockRepo.On("UpdateUserQuestProgress", mock.Anything, int64(42), quest.ID, 5, testTenant).
		Return(nil)
	mockRepo.On("CompleteQuest", mock.Anything, int64(42), quest.ID, testTenant).
		Return(nil)
	mockRepo.On("UnlockTitle", mock.Anything, int64(42), title, testTenant).
		Return(nil)
	mockRepo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant,
		mock.MatchedBy(func(update *model.GameStatsUpdate) bool {
			return update.PointsDelta != nil && *update.PointsDelta == 50
		})).
		Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 170, Level: 2, NextLevelPoints: 200}, nil)

	service := NewQuestService(mockRepo)

	result, err := service.ProcessQuestUpdates(context.Background(), 42, stats, testTenant)
	assert.NoError(t, err)
	assert.Len(t, result.CompletedQuests, 1)
	assert.Equal(t, 50, result.PointsEarned)
	assert.Equal(t, []string{title}, result.TitlesUnlocked)
	mockRepo.AssertExpectations(t)
}

func TestQuestService_ProcessQuestUpdates_CompletedIsTerminal(t *testing.T) {
	quest := activeQuest(model.RequirementQuizzesCompleted, 5, 50, nil)
	completedAt := time.Now().UTC()
	// stats still satisfy the target; nothing may be re-rewarded
	stats := &model.GameStats{UserTelegramID: 42, QuizzesCompleted: 12}

	mockRepo := &mocks.MockQuestRepository{}
	mockRepo.On("GetActiveQuests", mock.Anything).
		Return([]*model.QuestDefinition{quest}, nil)
	mockRepo.On("GetUserQuestProgress", mock.Anything, int64(42), testTenant).
		Return([]*model.UserQuestProgress{
			{
				UserTelegramID: 42,
				QuestID:        quest.ID,
				TenantID:       testTenant,
				CurrentValue:   5,
				IsCompleted:    true,
				CompletedAt:    &completedAt,
			},
		}, nil)

	service := NewQuestService(mockRepo)

	result, err := service.ProcessQuestUpdates(context.Background(), 42, stats, testTenant)
	assert.NoError(t, err)
	assert.Empty(t, result.CompletedQuests)
	assert.Zero(t, result.PointsEarned)
	mockRepo.AssertNotCalled(t, "UpdateUserQuestProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "CompleteQuest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateUserGameStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQuestService_ProcessQuestUpdates_PartialProgress(t *testing.T) {
	quest := activeQuest(model.RequirementLecturesRead, 10, 100, nil)
	stats := &model.GameStats{UserTelegramID: 42, LecturesRead: 4}

	mockRepo := &mocks.MockQuestRepository{}
	mockRepo.On("GetActiveQuests", mock.Anything).
		Return([]*model.QuestDefinition{quest}, nil)
	mockRepo.On("GetUserQuestProgress", mock.Anything, int64(42), testTenant).
		Return([]*model.UserQuestProgress{
			{UserTelegramID: 42, QuestID: quest.ID, TenantID: testTenant, CurrentValue: 2},
		}, nil)
	mockRepo.On("UpdateUserQuestProgress", mock.Anything, int64(42), quest.ID, 4, testTenant).
		Return(nil)

	service := NewQuestService(mockRepo)

	result, err := service.ProcessQuestUpdates(context.Background(), 42, stats, testTenant)
	assert.NoError(t, err)
	assert.Empty(t, result.CompletedQuests)
	assert.Zero(t, result.PointsEarned)
	mockRepo.AssertNotCalled(t, "CompleteQuest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestQuestService_ProcessQuestUpdates_NoMovementUntouched(t *testing.T) {
	quest := activeQuest(model.RequirementPerfectScore, 3, 75, nil)
	stats := &model.GameStats{UserTelegramID: 42, PerfectScores: 1}

	mockRepo := &mocks.MockQuestRepository{}
	mockRepo.On("GetActiveQuests", mock.Anything).
		Return([]*model.QuestDefinition{quest}, nil)
	mockRepo.On("GetUserQuestProgress", mock.Anything, int64(42), testTenant).
		Return([]*model.UserQuestProgress{
			{UserTelegramID: 42, QuestID: quest.ID, TenantID: testTenant, CurrentValue: 1},
		}, nil)

	service := NewQuestService(mockRepo)

	result, err := service.ProcessQuestUpdates(context.Background(), 42, stats, testTenant)
	assert.NoError(t, err)
	assert.Empty(t, result.CompletedQuests)
	mockRepo.AssertNotCalled(t, "UpdateUserQuestProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQuestService_ProcessQuestUpdates_ExpiredWindowSkipped(t *testing.T) {
	ended := time.Now().UTC().Add(-24 * time.Hour)
	quest := activeQuest(model.RequirementQuizzesCompleted, 1, 50, nil)
	quest.EndsAt = &ended
	stats := &model.GameStats{UserTelegramID: 42, QuizzesCompleted: 3}

	mockRepo := &mocks.MockQuestRepository{}
	mockRepo.On("GetActiveQuests", mock.Anything).
		Return([]*model.QuestDefinition{quest}, nil)
	mockRepo.On("GetUserQuestProgress", mock.Anything, int64(42), testTenant).
		Return([]*model.UserQuestProgress{}, nil)

	service := NewQuestService(mockRepo)

	result, err := service.ProcessQuestUpdates(context.Background(), 42, stats, testTenant)
	assert.NoError(t, err)
	assert.Empty(t, result.CompletedQuests)
	mockRepo.AssertNotCalled(t, "CompleteQuest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQuestService_ProcessQuestUpdates_RewardLevelsUp(t *testing.T) {
	quest := activeQuest(model.RequirementTotalPoints, 90, 30, nil)
	stats := &model.GameStats{UserTelegramID: 42, TotalPoints: 90, Level: 1}

	mockRepo := &mocks.MockQuestRepository{}
	mockRepo.On("GetActiveQuests", mock.Anything).
		Return([]*model.QuestDefinition{quest}, nil)
	mockRepo.On("GetUserQuestProgress", mock.Anything, int64(42), testTenant).
		Return([]*model.UserQuestProgress{}, nil)
	mockRepo.On("UpdateUserQuestProgress", mock.Anything, int64(42), quest.ID, 90, testTenant).
		Return(nil)
	mockRepo.On("CompleteQuest", mock.Anything, int64(42), quest.ID, testTenant).
		Return(nil)
	mockRepo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant,
		mock.MatchedBy(func(update *model.GameStatsUpdate) bool {
			return update.PointsDelta != nil && *update.PointsDelta == 30
		})).
		Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 120, Level: 1}, nil)
	mockRepo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant,
		mock.MatchedBy(func(update *model.GameStatsUpdate) bool {
			return update.Level != nil && *update.Level == 2 &&
				update.NextLevelPoints != nil && *update.NextLevelPoints == 200
		})).
		Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 120, Level: 2, NextLevelPoints: 200}, nil)

	service := NewQuestService(mockRepo)

	result, err := service.ProcessQuestUpdates(context.Background(), 42, stats, testTenant)
	assert.NoError(t, err)
	assert.Equal(t, 30, result.PointsEarned)
	mockRepo.AssertExpectations(t)
}
