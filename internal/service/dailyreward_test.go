package service

import (
	"context"
	"testing"
	"time"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/repository"
	"certquest_miniapp/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var rewardCycle = []*model.DailyRewardDefinition{
	{Day: 1, Points: 10},
	{Day: 2, Points: 20},
	{Day: 3, Points: 30, StreakFreezeGranted: true},
	{Day: 4, Points: 40},
	{Day: 5, Points: 50},
	{Day: 6, Points: 60},
	{Day: 7, Points: 100, StreakFreezeGranted: true},
}

func TestDailyRewardService_Claim(t *testing.T) {
	tests := []struct {
		name           string
		day            int
		mockSetup      func(repo *mocks.MockDailyRewardRepository)
		expectedResult *DailyRewardClaimResult
		expectedError  error
	}{
		{
			name: "Unknown day fails validation first",
			day:  9,
			mockSetup: func(repo *mocks.MockDailyRewardRepository) {
				repo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
			},
			expectedError: ErrInvalidRewardDay,
		},
		{
			name: "Existing claim is rejected",
			day:  2,
			mockSetup: func(repo *mocks.MockDailyRewardRepository) {
				repo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
				repo.On("GetUserDailyReward", mock.Anything, int64(42), 2, testTenant).
					Return(&model.UserDailyRewardClaim{
						UserTelegramID: 42,
						Day:            2,
						TenantID:       testTenant,
						ClaimedAt:      time.Now().UTC(),
					}, nil)
			},
			expectedError: ErrRewardAlreadyClaimed,
		},
		{
			name: "Racing duplicate insert is rejected by the unique key",
			day:  2,
			mockSetup: func(repo *mocks.MockDailyRewardRepository) {
				repo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
				repo.On("GetUserDailyReward", mock.Anything, int64(42), 2, testTenant).
					Return(nil, repository.ErrNotFound)
				repo.On("CreateUserDailyReward", mock.Anything, int64(42), 2, testTenant).
					Return(repository.ErrAlreadyExists)
			},
			expectedError: ErrRewardAlreadyClaimed,
		},
		{
			name: "Successful claim grants points",
			day:  2,
			mockSetup: func(repo *mocks.MockDailyRewardRepository) {
				repo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
				repo.On("GetUserDailyReward", mock.Anything, int64(42), 2, testTenant).
					Return(nil, repository.ErrNotFound)
				repo.On("CreateUserDailyReward", mock.Anything, int64(42), 2, testTenant).
					Return(nil)
				repo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant,
					mock.MatchedBy(func(update *model.GameStatsUpdate) bool {
						return update.PointsDelta != nil && *update.PointsDelta == 20 &&
							update.StreakFreezesDelta == nil
					})).
					Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 20, Level: 1, NextLevelPoints: 100}, nil)
			},
			expectedResult: &DailyRewardClaimResult{Day: 2, PointsEarned: 20},
		},
		{
			name: "Freeze day credits the streak freeze counter",
			day:  3,
			mockSetup: func(repo *mocks.MockDailyRewardRepository) {
				repo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
				repo.On("GetUserDailyReward", mock.Anything, int64(42), 3, testTenant).
					Return(nil, repository.ErrNotFound)
				repo.On("CreateUserDailyReward", mock.Anything, int64(42), 3, testTenant).
					Return(nil)
				repo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant,
					mock.MatchedBy(func(update *model.GameStatsUpdate) bool {
						return update.PointsDelta != nil && *update.PointsDelta == 30 &&
							update.StreakFreezesDelta != nil && *update.StreakFreezesDelta == 1
					})).
					Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 30, Level: 1, NextLevelPoints: 100, StreakFreezes: 1}, nil)
			},
			expectedResult: &DailyRewardClaimResult{Day: 3, PointsEarned: 30, StreakFreezeGranted: true},
		},
		{
			name: "Storage failure propagates unchanged",
			day:  1,
			mockSetup: func(repo *mocks.MockDailyRewardRepository) {
				repo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
				repo.On("GetUserDailyReward", mock.Anything, int64(42), 1, testTenant).
					Return(nil, repository.ErrNotFound)
				repo.On("CreateUserDailyReward", mock.Anything, int64(42), 1, testTenant).
					Return(assert.AnError)
			},
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockDailyRewardRepository{}
			tt.mockSetup(mockRepo)
			service := NewDailyRewardService(mockRepo)

			result, err := service.Claim(context.Background(), 42, tt.day, testTenant)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedResult, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestDailyRewardService_Claim_SecondClaimAwardsNothing(t *testing.T) {
	mockRepo := &mocks.MockDailyRewardRepository{}
	service := NewDailyRewardService(mockRepo)

	mockRepo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
	mockRepo.On("GetUserDailyReward", mock.Anything, int64(42), 1, testTenant).
		Return(nil, repository.ErrNotFound).Once()
	mockRepo.On("CreateUserDailyReward", mock.Anything, int64(42), 1, testTenant).
		Return(nil).Once()
	mockRepo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant, mock.Anything).
		Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 10, Level: 1, NextLevelPoints: 100}, nil).Once()

	first, err := service.Claim(context.Background(), 42, 1, testTenant)
	assert.NoError(t, err)
	assert.Equal(t, 10, first.PointsEarned)

	mockRepo.On("GetUserDailyReward", mock.Anything, int64(42), 1, testTenant).
		Return(&model.UserDailyRewardClaim{UserTelegramID: 42, Day: 1, TenantID: testTenant}, nil).Once()

	second, err := service.Claim(context.Background(), 42, 1, testTenant)
	assert.ErrorIs(t, err, ErrRewardAlreadyClaimed)
	assert.Nil(t, second)

	// exactly one point award across both attempts
	mockRepo.AssertNumberOfCalls(t, "UpdateUserGameStats", 1)
}

func TestDailyRewardService_Claim_CrossesLevelThreshold(t *testing.T) {
	mockRepo := &mocks.MockDailyRewardRepository{}
	mockRepo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
	mockRepo.On("GetUserDailyReward", mock.Anything, int64(42), 7, testTenant).
		Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateUserDailyReward", mock.Anything, int64(42), 7, testTenant).
		Return(nil)
	// user sits at 90 points; the 100-point day-7 reward crosses level 2
	mockRepo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant,
		mock.MatchedBy(func(update *model.GameStatsUpdate) bool {
			return update.PointsDelta != nil && *update.PointsDelta == 100
		})).
		Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 190, Level: 1, NextLevelPoints: 100, StreakFreezes: 1}, nil)
	mockRepo.On("UpdateUserGameStats", mock.Anything, int64(42), testTenant,
		mock.MatchedBy(func(update *model.GameStatsUpdate) bool {
			return update.Level != nil && *update.Level == 2 &&
				update.NextLevelPoints != nil && *update.NextLevelPoints == 200
		})).
		Return(&model.GameStats{UserTelegramID: 42, TotalPoints: 190, Level: 2, NextLevelPoints: 200}, nil)

	service := NewDailyRewardService(mockRepo)

	result, err := service.Claim(context.Background(), 42, 7, testTenant)
	assert.NoError(t, err)
	assert.Equal(t, 100, result.PointsEarned)
	assert.True(t, result.StreakFreezeGranted)
	mockRepo.AssertExpectations(t)
}

func TestDailyRewardService_Status(t *testing.T) {
	claimedAt := time.Now().UTC().Add(-2 * time.Hour)

	mockRepo := &mocks.MockDailyRewardRepository{}
	mockRepo.On("GetDailyRewards", mock.Anything).Return(rewardCycle, nil)
	mockRepo.On("GetUserDailyReward", mock.Anything, int64(42), 1, testTenant).
		Return(&model.UserDailyRewardClaim{UserTelegramID: 42, Day: 1, TenantID: testTenant, ClaimedAt: claimedAt}, nil)
	for day := 2; day <= 7; day++ {
		mockRepo.On("GetUserDailyReward", mock.Anything, int64(42), day, testTenant).
			Return(nil, repository.ErrNotFound)
	}

	service := NewDailyRewardService(mockRepo)

	statuses, err := service.Status(context.Background(), 42, testTenant)
	assert.NoError(t, err)
	assert.Len(t, statuses, 7)

	assert.True(t, statuses[0].Claimed)
	assert.NotNil(t, statuses[0].ClaimedAt)
	for _, status := range statuses[1:] {
		assert.False(t, status.Claimed)
		assert.Nil(t, status.ClaimedAt)
	}
}
