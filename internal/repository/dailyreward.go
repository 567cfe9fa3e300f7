package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
)

type dailyReward struct {
	Day                 int  `db:"day"`
	Points              int  `db:"points"`
	StreakFreezeGranted bool `db:"streak_freeze_granted"`
}

type userDailyReward struct {
	UserTelegramID int64     `db:"user_telegram_id"`
	Day            int       `db:"day"`
	TenantID       string    `db:"tenant_id"`
	ClaimedAt      time.Time `db:"claimed_at"`
}

func (r *Repository) GetDailyRewards(ctx context.Context) ([]*model.DailyRewardDefinition, error) {
	query, args, err := squirrel.
		Select("day", "points", "streak_freeze_granted").
		From("daily_rewards").
		OrderBy("day ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []dailyReward
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily rewards: %w", err)
	}

	rewards := make([]*model.DailyRewardDefinition, len(rows))
	for i, row := range rows {
		rewards[i] = &model.DailyRewardDefinition{
			Day:                 row.Day,
			Points:              row.Points,
			StreakFreezeGranted: row.StreakFreezeGranted,
		}
	}

	return rewards, nil
}

func (r *Repository) GetUserDailyReward(ctx context.Context, userID int64, day int, tenantID string) (*model.UserDailyRewardClaim, error) {
	var claim userDailyReward

	query, args, err := squirrel.
		Select("user_telegram_id", "day", "tenant_id", "claimed_at").
		From("user_daily_rewards").
		Where(squirrel.Eq{
			"user_telegram_id": userID,
			"day":              day,
			"tenant_id":        tenantID,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &claim, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.UserDailyRewardClaim{
		UserTelegramID: claim.UserTelegramID,
		Day:            claim.Day,
		TenantID:       claim.TenantID,
		ClaimedAt:      claim.ClaimedAt,
	}, nil
}

// CreateUserDailyReward appends one claim row. The unique key on
// (user_telegram_id, day, tenant_id) turns a double claim into
// ErrAlreadyExists instead of a silent duplicate.
func (r *Repository) CreateUserDailyReward(ctx context.Context, userID int64, day int, tenantID string) error {
	query, args, err := squirrel.
		Insert("user_daily_rewards").
		SetMap(map[string]interface{}{
			"user_telegram_id": userID,
			"day":              day,
			"tenant_id":        tenantID,
			"claimed_at":       time.Now().UTC(),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build claim insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert claim: %w", err)
	}

	return nil
}
