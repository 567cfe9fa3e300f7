package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type gameStats struct {
	UserTelegramID    int64      `db:"user_telegram_id"`
	TenantID          string     `db:"tenant_id"`
	TotalPoints       int        `db:"total_points"`
	CurrentStreak     int        `db:"current_streak"`
	LongestStreak     int        `db:"longest_streak"`
	LastActivityDate  *time.Time `db:"last_activity_date"`
	Level             int        `db:"level"`
	NextLevelPoints   int        `db:"next_level_points"`
	TotalBadgesEarned int        `db:"total_badges_earned"`
	StreakFreezes     int        `db:"streak_freezes"`
	QuizzesCompleted  int        `db:"quizzes_completed"`
	LecturesRead      int        `db:"lectures_read"`
	QuestionsAnswered int        `db:"questions_answered"`
	PerfectScores     int        `db:"perfect_scores"`
	HighScore         int        `db:"high_score"`
}

func (g *gameStats) toModel() *model.GameStats {
	return &model.GameStats{
		UserTelegramID:    g.UserTelegramID,
		TenantID:          g.TenantID,
		TotalPoints:       g.TotalPoints,
		CurrentStreak:     g.CurrentStreak,
		LongestStreak:     g.LongestStreak,
		LastActivityDate:  g.LastActivityDate,
		Level:             g.Level,
		NextLevelPoints:   g.NextLevelPoints,
		TotalBadgesEarned: g.TotalBadgesEarned,
		StreakFreezes:     g.StreakFreezes,
		QuizzesCompleted:  g.QuizzesCompleted,
		LecturesRead:      g.LecturesRead,
		QuestionsAnswered: g.QuestionsAnswered,
		PerfectScores:     g.PerfectScores,
		HighScore:         g.HighScore,
	}
}

func (r *Repository) GetUserGameStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error) {
	var stats gameStats

	query, args, err := squirrel.
		Select("*").
		From("game_stats").
		Where(squirrel.Eq{"user_telegram_id": userID, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &stats, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return stats.toModel(), nil
}

// UpdateUserGameStats applies a partial update and returns the fresh row.
// The row is created with zero-state defaults on first touch. Delta
// fields become "col + ?" expressions so concurrent writers cannot lose
// increments; longest streak and high score only ever ratchet upward.
func (r *Repository) UpdateUserGameStats(ctx context.Context, userID int64, tenantID string, update *model.GameStatsUpdate) (*model.GameStats, error) {
	var stats gameStats

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		insertQuery, insertArgs, err := squirrel.
			Insert("game_stats").
			SetMap(map[string]interface{}{
				"user_telegram_id":  userID,
				"tenant_id":         tenantID,
				"level":             1,
				"next_level_points": 100,
			}).
			Suffix("ON CONFLICT (user_telegram_id, tenant_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build game stats insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert game stats: %w", err)
		}

		setMap := buildGameStatsSetMap(update)
		if len(setMap) == 0 {
			selectQuery, selectArgs, err := squirrel.
				Select("*").
				From("game_stats").
				Where(squirrel.Eq{"user_telegram_id": userID, "tenant_id": tenantID}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}
			return tx.GetContext(ctx, &stats, selectQuery, selectArgs...)
		}

		updateQuery, updateArgs, err := squirrel.
			Update("game_stats").
			SetMap(setMap).
			Where(squirrel.Eq{"user_telegram_id": userID, "tenant_id": tenantID}).
			Suffix("RETURNING *").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build game stats update query: %w", err)
		}

		err = tx.GetContext(ctx, &stats, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update game stats: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats.toModel(), nil
}

func buildGameStatsSetMap(update *model.GameStatsUpdate) map[string]interface{} {
	setMap := map[string]interface{}{}

	if update.PointsDelta != nil {
		setMap["total_points"] = squirrel.Expr("total_points + ?", *update.PointsDelta)
	}
	if update.BadgesEarnedDelta != nil {
		setMap["total_badges_earned"] = squirrel.Expr("total_badges_earned + ?", *update.BadgesEarnedDelta)
	}
	if update.StreakFreezesDelta != nil {
		setMap["streak_freezes"] = squirrel.Expr("streak_freezes + ?", *update.StreakFreezesDelta)
	}
	if update.QuizzesCompletedDelta != nil {
		setMap["quizzes_completed"] = squirrel.Expr("quizzes_completed + ?", *update.QuizzesCompletedDelta)
	}
	if update.LecturesReadDelta != nil {
		setMap["lectures_read"] = squirrel.Expr("lectures_read + ?", *update.LecturesReadDelta)
	}
	if update.QuestionsAnsweredDelta != nil {
		setMap["questions_answered"] = squirrel.Expr("questions_answered + ?", *update.QuestionsAnsweredDelta)
	}
	if update.PerfectScoresDelta != nil {
		setMap["perfect_scores"] = squirrel.Expr("perfect_scores + ?", *update.PerfectScoresDelta)
	}
	if update.CurrentStreak != nil {
		setMap["current_streak"] = *update.CurrentStreak
	}
	if update.LongestStreak != nil {
		setMap["longest_streak"] = squirrel.Expr("GREATEST(longest_streak, ?)", *update.LongestStreak)
	}
	if update.LastActivityDate != nil {
		setMap["last_activity_date"] = *update.LastActivityDate
	}
	if update.Level != nil {
		setMap["level"] = *update.Level
	}
	if update.NextLevelPoints != nil {
		setMap["next_level_points"] = *update.NextLevelPoints
	}
	if update.HighScore != nil {
		setMap["high_score"] = squirrel.Expr("GREATEST(high_score, ?)", *update.HighScore)
	}

	return setMap
}
