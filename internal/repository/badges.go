package repository

import (
	"context"
	"fmt"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type badge struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Icon        string    `db:"icon"`
	Requirement []byte    `db:"requirement"`
	CreatedAt   time.Time `db:"created_at"`
}

type userBadge struct {
	UserTelegramID int64     `db:"user_telegram_id"`
	BadgeID        uuid.UUID `db:"badge_id"`
	TenantID       string    `db:"tenant_id"`
	AwardedAt      time.Time `db:"awarded_at"`
	Progress       int       `db:"progress"`
	Notified       bool      `db:"notified"`
}

// toModel decodes the requirement jsonb into the typed union. A blob that
// does not decode leaves Requirement nil, which evaluation treats as
// "skip this badge".
func (b *badge) toModel() *model.BadgeDefinition {
	def := &model.BadgeDefinition{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		CreatedAt:   b.CreatedAt,
	}

	if len(b.Requirement) > 0 {
		var req model.BadgeRequirement
		if err := json.Unmarshal(b.Requirement, &req); err == nil && req.Type != "" {
			def.Requirement = &req
		}
	}

	return def
}

func (r *Repository) GetBadges(ctx context.Context) ([]*model.BadgeDefinition, error) {
	query, args, err := squirrel.
		Select("id", "name", "description", "icon", "requirement", "created_at").
		From("badges").
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var badges []badge
	err = r.db.SelectContext(ctx, &badges, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}

	defs := make([]*model.BadgeDefinition, len(badges))
	for i := range badges {
		defs[i] = badges[i].toModel()
	}

	return defs, nil
}

func (r *Repository) CreateBadge(ctx context.Context, def *model.BadgeDefinition) error {
	requirement, err := json.Marshal(def.Requirement)
	if err != nil {
		return fmt.Errorf("failed to marshal requirement: %w", err)
	}

	query, args, err := squirrel.
		Insert("badges").
		SetMap(map[string]interface{}{
			"id":          def.ID,
			"name":        def.Name,
			"description": def.Description,
			"icon":        def.Icon,
			"requirement": requirement,
			"created_at":  time.Now().UTC(),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build badge insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert badge: %w", err)
	}

	return nil
}

func (r *Repository) GetUserBadges(ctx context.Context, userID int64, tenantID string) ([]*model.UserBadgeAward, error) {
	query, args, err := squirrel.
		Select("user_telegram_id", "badge_id", "tenant_id", "awarded_at", "progress", "notified").
		From("user_badges").
		Where(squirrel.Eq{"user_telegram_id": userID, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []userBadge
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}

	awards := make([]*model.UserBadgeAward, len(rows))
	for i, row := range rows {
		awards[i] = &model.UserBadgeAward{
			UserTelegramID: row.UserTelegramID,
			BadgeID:        row.BadgeID,
			TenantID:       row.TenantID,
			AwardedAt:      row.AwardedAt,
			Progress:       row.Progress,
			Notified:       row.Notified,
		}
	}

	return awards, nil
}

// CreateUserBadge inserts one award row. The unique key on
// (user_telegram_id, badge_id, tenant_id) makes a repeat insert fail
// with ErrAlreadyExists regardless of what the caller read beforehand.
func (r *Repository) CreateUserBadge(ctx context.Context, award *model.UserBadgeAward) (*model.UserBadgeAward, error) {
	query, args, err := squirrel.
		Insert("user_badges").
		SetMap(map[string]interface{}{
			"user_telegram_id": award.UserTelegramID,
			"badge_id":         award.BadgeID,
			"tenant_id":        award.TenantID,
			"awarded_at":       award.AwardedAt,
			"progress":         award.Progress,
			"notified":         award.Notified,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build badge award insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert badge award: %w", err)
	}

	return award, nil
}

func (r *Repository) MarkUserBadgeNotified(ctx context.Context, userID int64, badgeID uuid.UUID, tenantID string) error {
	query, args, err := squirrel.
		Update("user_badges").
		Set("notified", true).
		Where(squirrel.Eq{
			"user_telegram_id": userID,
			"badge_id":         badgeID,
			"tenant_id":        tenantID,
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
		return ErrNotFound
	}

	return nil
}
