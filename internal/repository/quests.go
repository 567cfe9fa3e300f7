package repository

import (
	"context"
	"fmt"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type quest struct {
	ID              uuid.UUID  `db:"id"`
	Title           string     `db:"title"`
	Description     string     `db:"description"`
	RequirementType string     `db:"requirement_type"`
	TargetValue     int        `db:"target_value"`
	RewardPoints    int        `db:"reward_points"`
	TitleReward     *string    `db:"title_reward"`
	IsActive        bool       `db:"is_active"`
	StartsAt        *time.Time `db:"starts_at"`
	EndsAt          *time.Time `db:"ends_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

type userQuestProgress struct {
	UserTelegramID int64      `db:"user_telegram_id"`
	QuestID        uuid.UUID  `db:"quest_id"`
	TenantID       string     `db:"tenant_id"`
	CurrentValue   int        `db:"current_value"`
	IsCompleted    bool       `db:"is_completed"`
	CompletedAt    *time.Time `db:"completed_at"`
}

func (r *Repository) GetActiveQuests(ctx context.Context) ([]*model.QuestDefinition, error) {
	query, args, err := squirrel.
		Select("*").
		From("quests").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var quests []quest
	err = r.db.SelectContext(ctx, &quests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get active quests: %w", err)
	}

	defs := make([]*model.QuestDefinition, len(quests))
	for i, q := range quests {
		defs[i] = &model.QuestDefinition{
			ID:              q.ID,
			Title:           q.Title,
			Description:     q.Description,
			RequirementType: model.RequirementType(q.RequirementType),
			TargetValue:     q.TargetValue,
			RewardPoints:    q.RewardPoints,
			TitleReward:     q.TitleReward,
			IsActive:        q.IsActive,
			StartsAt:        q.StartsAt,
			EndsAt:          q.EndsAt,
			CreatedAt:       q.CreatedAt,
		}
	}

	return defs, nil
}

func (r *Repository) CreateQuest(ctx context.Context, def *model.QuestDefinition) error {
	query, args, err := squirrel.
		Insert("quests").
		SetMap(map[string]interface{}{
			"id":               def.ID,
			"title":            def.Title,
			"description":      def.Description,
			"requirement_type": string(def.RequirementType),
			"target_value":     def.TargetValue,
			"reward_points":    def.RewardPoints,
			"title_reward":     def.TitleReward,
			"is_active":        def.IsActive,
			"starts_at":        def.StartsAt,
			"ends_at":          def.EndsAt,
			"created_at":       time.Now().UTC(),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quest insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert quest: %w", err)
	}

	return nil
}

func (r *Repository) GetUserQuestProgress(ctx context.Context, userID int64, tenantID string) ([]*model.UserQuestProgress, error) {
	query, args, err := squirrel.
		Select("user_telegram_id", "quest_id", "tenant_id", "current_value", "is_completed", "completed_at").
		From("user_quest_progress").
		Where(squirrel.Eq{"user_telegram_id": userID, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []userQuestProgress
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	records := make([]*model.UserQuestProgress, len(rows))
	for i, row := range rows {
		records[i] = &model.UserQuestProgress{
			UserTelegramID: row.UserTelegramID,
			QuestID:        row.QuestID,
			TenantID:       row.TenantID,
			CurrentValue:   row.CurrentValue,
			IsCompleted:    row.IsCompleted,
			CompletedAt:    row.CompletedAt,
		}
	}

	return records, nil
}

// UpdateUserQuestProgress upserts the progress counter. Completed rows
// are terminal and never overwritten.
func (r *Repository) UpdateUserQuestProgress(ctx context.Context, userID int64, questID uuid.UUID, newValue int, tenantID string) error {
	query, args, err := squirrel.
		Insert("user_quest_progress").
		SetMap(map[string]interface{}{
			"user_telegram_id": userID,
			"quest_id":         questID,
			"tenant_id":        tenantID,
			"current_value":    newValue,
			"is_completed":     false,
		}).
		Suffix(`ON CONFLICT (user_telegram_id, quest_id, tenant_id)
			DO UPDATE SET current_value = EXCLUDED.current_value
			WHERE user_quest_progress.is_completed = false`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quest progress upsert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert quest progress: %w", err)
	}

	return nil
}

func (r *Repository) CompleteQuest(ctx context.Context, userID int64, questID uuid.UUID, tenantID string) error {
	query, args, err := squirrel.
		Update("user_quest_progress").
		SetMap(map[string]interface{}{
			"is_completed": true,
			"completed_at": time.Now().UTC(),
		}).
		Where(squirrel.Eq{
			"user_telegram_id": userID,
			"quest_id":         questID,
			"tenant_id":        tenantID,
			"is_completed":     false,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrQuestNotFound
	}

	return nil
}

// UnlockTitle appends the title to the user's unlocked set. Unlocking an
// already-held title is a no-op.
func (r *Repository) UnlockTitle(ctx context.Context, userID int64, title string, tenantID string) error {
	query, args, err := squirrel.
		Update("users").
		Set("titles", squirrel.Expr("array_append(titles, ?)", title)).
		Where(squirrel.Eq{"telegram_id": userID}).
		Where(squirrel.Expr("NOT (? = ANY(titles))", title)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to unlock title: %w", err)
	}

	return nil
}
