package mocks

import (
	"context"

	"certquest_miniapp/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetUserGameStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GameStats), args.Error(1)
}

func (m *MockProgressRepository) UpdateUserGameStats(ctx context.Context, userID int64, tenantID string, update *model.GameStatsUpdate) (*model.GameStats, error) {
	args := m.Called(ctx, userID, tenantID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GameStats), args.Error(1)
}

func (m *MockProgressRepository) CreateQuiz(ctx context.Context, quiz *model.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockProgressRepository) CreateLecture(ctx context.Context, lecture *model.Lecture) error {
	args := m.Called(ctx, lecture)
	return args.Error(0)
}

func (m *MockProgressRepository) GetUserQuizzes(ctx context.Context, userID int64, tenantID string) ([]*model.Quiz, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quiz), args.Error(1)
}

func (m *MockProgressRepository) GetUserLectures(ctx context.Context, userID int64, tenantID string) ([]*model.Lecture, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Lecture), args.Error(1)
}

type MockBadgeRepository struct {
	mock.Mock
}

func (m *MockBadgeRepository) GetBadges(ctx context.Context) ([]*model.BadgeDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BadgeDefinition), args.Error(1)
}

func (m *MockBadgeRepository) CreateBadge(ctx context.Context, badge *model.BadgeDefinition) error {
	args := m.Called(ctx, badge)
	return args.Error(0)
}

func (m *MockBadgeRepository) GetUserBadges(ctx context.Context, userID int64, tenantID string) ([]*model.UserBadgeAward, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserBadgeAward), args.Error(1)
}

func (m *MockBadgeRepository) CreateUserBadge(ctx context.Context, award *model.UserBadgeAward) (*model.UserBadgeAward, error) {
	args := m.Called(ctx, award)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserBadgeAward), args.Error(1)
}

func (m *MockBadgeRepository) GetUserGameStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GameStats), args.Error(1)
}

func (m *MockBadgeRepository) GetUserQuizzes(ctx context.Context, userID int64, tenantID string) ([]*model.Quiz, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quiz), args.Error(1)
}

func (m *MockBadgeRepository) GetUserLectures(ctx context.Context, userID int64, tenantID string) ([]*model.Lecture, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Lecture), args.Error(1)
}

type MockQuestRepository struct {
	mock.Mock
}

func (m *MockQuestRepository) GetActiveQuests(ctx context.Context) ([]*model.QuestDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuestDefinition), args.Error(1)
}

func (m *MockQuestRepository) CreateQuest(ctx context.Context, quest *model.QuestDefinition) error {
	args := m.Called(ctx, quest)
	return args.Error(0)
}

func (m *MockQuestRepository) GetUserQuestProgress(ctx context.Context, userID int64, tenantID string) ([]*model.UserQuestProgress, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserQuestProgress), args.Error(1)
}

func (m *MockQuestRepository) UpdateUserQuestProgress(ctx context.Context, userID int64, questID uuid.UUID, newValue int, tenantID string) error {
	args := m.Called(ctx, userID, questID, newValue, tenantID)
	return args.Error(0)
}

func (m *MockQuestRepository) CompleteQuest(ctx context.Context, userID int64, questID uuid.UUID, tenantID string) error {
	args := m.Called(ctx, userID, questID, tenantID)
	return args.Error(0)
}

func (m *MockQuestRepository) UnlockTitle(ctx context.Context, userID int64, title string, tenantID string) error {
	args := m.Called(ctx, userID, title, tenantID)
	return args.Error(0)
}

func (m *MockQuestRepository) UpdateUserGameStats(ctx context.Context, userID int64, tenantID string, update *model.GameStatsUpdate) (*model.GameStats, error) {
	args := m.Called(ctx, userID, tenantID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GameStats), args.Error(1)
}

type MockDailyRewardRepository struct {
	mock.Mock
}

func (m *MockDailyRewardRepository) GetDailyRewards(ctx context.Context) ([]*model.DailyRewardDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DailyRewardDefinition), args.Error(1)
}

func (m *MockDailyRewardRepository) GetUserDailyReward(ctx context.Context, userID int64, day int, tenantID string) (*model.UserDailyRewardClaim, error) {
	args := m.Called(ctx, userID, day, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserDailyRewardClaim), args.Error(1)
}

func (m *MockDailyRewardRepository) CreateUserDailyReward(ctx context.Context, userID int64, day int, tenantID string) error {
	args := m.Called(ctx, userID, day, tenantID)
	return args.Error(0)
}

func (m *MockDailyRewardRepository) UpdateUserGameStats(ctx context.Context, userID int64, tenantID string, update *model.GameStatsUpdate) (*model.GameStats, error) {
	args := m.Called(ctx, userID, tenantID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GameStats), args.Error(1)
}
