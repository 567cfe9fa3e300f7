package service

import (
	"context"
	"fmt"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type NotifierConfig struct {
	BotToken string
	Debug    bool
}

// NotifierService pushes badge congratulation messages through the bot
// and flips the award's notified flag. Delivery is best-effort: a failed
// send is logged and never fails the pipeline that earned the badge.
type NotifierService struct {
	bot  *tgbotapi.BotAPI
	repo NotifierRepository
}

func NewNotifierService(config NotifierConfig, repo NotifierRepository) (*NotifierService, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = config.Debug

	return &NotifierService{
		bot:  bot,
		repo: repo,
	}, nil
}

func (s *NotifierService) NotifyNewBadges(ctx context.Context, userID int64, tenantID string, badges []*model.BadgeDefinition) {
	log := logger.Logger()

	for _, badge := range badges {
		text := fmt.Sprintf("🎖 Congratulations! You earned the \"%s\" badge.", badge.Name)
		if _, err := s.bot.Send(tgbotapi.NewMessage(userID, text)); err != nil {
			log.Warn("failed to send badge notification",
				zap.Int64("telegram_id", userID),
				zap.String("badge", badge.Name),
				zap.Error(err))
			continue
		}

		if err := s.repo.MarkUserBadgeNotified(ctx, userID, badge.ID, tenantID); err != nil {
			log.Warn("failed to mark badge award notified",
				zap.Int64("telegram_id", userID),
				zap.String("badge", badge.Name),
				zap.Error(err))
		}
	}
}
