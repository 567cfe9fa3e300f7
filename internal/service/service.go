package service

import (
	"context"
	"errors"

	"certquest_miniapp/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidRewardDay     = errors.New("daily reward day does not exist")
	ErrRewardAlreadyClaimed = errors.New("daily reward already claimed for this day")
	ErrTitleNotUnlocked     = errors.New("title not unlocked")
)

type Service struct {
	*UserService
	*ProgressService
	*BadgeService
	*QuestService
	*DailyRewardService
}

func NewService(
	userService *UserService,
	progressService *ProgressService,
	badgeService *BadgeService,
	questService *QuestService,
	dailyRewardService *DailyRewardService,
) *Service {
	return &Service{
		UserService:        userService,
		ProgressService:    progressService,
		BadgeService:       badgeService,
		QuestService:       questService,
		DailyRewardService: dailyRewardService,
	}
}

type UserServiceI interface {
	RegisterUser(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	SelectTitle(ctx context.Context, telegramID int64, title string) error
}

type ProgressServiceI interface {
	ProcessQuizCompletion(ctx context.Context, userID int64, quiz *model.Quiz, tenantID string) (*QuizCompletionResult, error)
	ProcessLectureRead(ctx context.Context, userID int64, tenantID string) (*LectureReadResult, error)
	GetUserGameStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error)
	RecordQuiz(ctx context.Context, quiz *model.Quiz) error
	RecordLecture(ctx context.Context, lecture *model.Lecture) error
}

type BadgeServiceI interface {
	GetBadgeProgress(ctx context.Context, userID int64, tenantID string) ([]*model.BadgeProgressEntry, error)
	CreateBadgeDefinition(ctx context.Context, badge *model.BadgeDefinition) (uuid.UUID, error)
}

type QuestServiceI interface {
	ProcessQuestUpdates(ctx context.Context, userID int64, stats *model.GameStats, tenantID string) (*QuestUpdateResult, error)
	GetUserQuests(ctx context.Context, userID int64, tenantID string) ([]*model.QuestDefinition, []*model.UserQuestProgress, error)
	CreateQuestDefinition(ctx context.Context, quest *model.QuestDefinition) (uuid.UUID, error)
}

type DailyRewardServiceI interface {
	Claim(ctx context.Context, userID int64, day int, tenantID string) (*DailyRewardClaimResult, error)
	Status(ctx context.Context, userID int64, tenantID string) ([]*model.DailyRewardStatus, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	SetSelectedTitle(ctx context.Context, telegramID int64, title string) error
}

type ProgressRepository interface {
	GetUserGameStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error)
	UpdateUserGameStats(ctx context.Context, userID int64, tenantID string, update *model.GameStatsUpdate) (*model.GameStats, error)
	CreateQuiz(ctx context.Context, quiz *model.Quiz) error
	CreateLecture(ctx context.Context, lecture *model.Lecture) error
	GetUserQuizzes(ctx context.Context, userID int64, tenantID string) ([]*model.Quiz, error)
	GetUserLectures(ctx context.Context, userID int64, tenantID string) ([]*model.Lecture, error)
}

type BadgeRepository interface {
	GetBadges(ctx context.Context) ([]*model.BadgeDefinition, error)
	CreateBadge(ctx context.Context, badge *model.BadgeDefinition) error
	GetUserBadges(ctx context.Context, userID int64, tenantID string) ([]*model.UserBadgeAward, error)
	CreateUserBadge(ctx context.Context, award *model.UserBadgeAward) (*model.UserBadgeAward, error)
	GetUserGameStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error)
	GetUserQuizzes(ctx context.Context, userID int64, tenantID string) ([]*model.Quiz, error)
	GetUserLectures(ctx context.Context, userID int64, tenantID string) ([]*model.Lecture, error)
}

type QuestRepository interface {
	GetActiveQuests(ctx context.Context) ([]*model.QuestDefinition, error)
	CreateQuest(ctx context.Context, quest *model.QuestDefinition) error
	GetUserQuestProgress(ctx context.Context, userID int64, tenantID string) ([]*model.UserQuestProgress, error)
	UpdateUserQuestProgress(ctx context.Context, userID int64, questID uuid.UUID, newValue int, tenantID string) error
	CompleteQuest(ctx context.Context, userID int64, questID uuid.UUID, tenantID string) error
	UnlockTitle(ctx context.Context, userID int64, title string, tenantID string) error
	UpdateUserGameStats(ctx context.Context, userID int64, tenantID string, update *model.GameStatsUpdate) (*model.GameStats, error)
}

type DailyRewardRepository interface {
	GetDailyRewards(ctx context.Context) ([]*model.DailyRewardDefinition, error)
	GetUserDailyReward(ctx context.Context, userID int64, day int, tenantID string) (*model.UserDailyRewardClaim, error)
	CreateUserDailyReward(ctx context.Context, userID int64, day int, tenantID string) error
	UpdateUserGameStats(ctx context.Context, userID int64, tenantID string, update *model.GameStatsUpdate) (*model.GameStats, error)
}

type NotifierRepository interface {
	MarkUserBadgeNotified(ctx context.Context, userID int64, badgeID uuid.UUID, tenantID string) error
}
