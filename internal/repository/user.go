package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type user struct {
	TelegramID       int64          `db:"telegram_id"`
	Handle           string         `db:"handle"`
	Username         string         `db:"username"`
	TenantID         string         `db:"tenant_id"`
	IsAdmin          bool           `db:"is_admin"`
	SelectedTitle    *string        `db:"selected_title"`
	Titles           pq.StringArray `db:"titles"`
	RegistrationDate time.Time      `db:"registration_date"`
	AuthDate         time.Time      `db:"last_auth_date"`
}

func (u *user) toModel() *model.User {
	return &model.User{
		TelegramID:       u.TelegramID,
		Handle:           u.Handle,
		Username:         u.Username,
		TenantID:         u.TenantID,
		IsAdmin:          u.IsAdmin,
		SelectedTitle:    u.SelectedTitle,
		Titles:           []string(u.Titles),
		RegistrationDate: u.RegistrationDate,
		AuthDate:         u.AuthDate,
	}
}

func (r *Repository) CreateUser(ctx context.Context, u *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id":       u.TelegramID,
			"handle":            u.Handle,
			"username":          u.Username,
			"tenant_id":         u.TenantID,
			"is_admin":          u.IsAdmin,
			"selected_title":    u.SelectedTitle,
			"titles":            pq.StringArray(u.Titles),
			"registration_date": u.RegistrationDate,
			"last_auth_date":    u.AuthDate,
		}).
		Suffix("ON CONFLICT (telegram_id) DO UPDATE SET username = EXCLUDED.username, last_auth_date = EXCLUDED.last_auth_date").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var u user

	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return u.toModel(), nil
}

func (r *Repository) SetSelectedTitle(ctx context.Context, telegramID int64, title string) error {
	query, args, err := squirrel.
		Update("users").
		Set("selected_title", title).
		Where(squirrel.Eq{"telegram_id": telegramID}).
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
