package repository

import (
	"context"
	"fmt"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type quiz struct {
	ID             uuid.UUID  `db:"id"`
	UserTelegramID int64      `db:"user_telegram_id"`
	TenantID       string     `db:"tenant_id"`
	ExamCode       string     `db:"exam_code"`
	Score          *int       `db:"score"`
	CorrectAnswers int        `db:"correct_answers"`
	Passed         bool       `db:"passed"`
	StartedAt      time.Time  `db:"started_at"`
	CompletedAt    *time.Time `db:"completed_at"`
}

type lecture struct {
	ID             uuid.UUID `db:"id"`
	UserTelegramID int64     `db:"user_telegram_id"`
	TenantID       string    `db:"tenant_id"`
	Topic          string    `db:"topic"`
	ReadAt         time.Time `db:"read_at"`
}

func (r *Repository) CreateQuiz(ctx context.Context, q *model.Quiz) error {
	query, args, err := squirrel.
		Insert("quizzes").
		SetMap(map[string]interface{}{
			"id":               q.ID,
			"user_telegram_id": q.UserTelegramID,
			"tenant_id":        q.TenantID,
			"exam_code":        q.ExamCode,
			"score":            q.Score,
			"correct_answers":  q.CorrectAnswers,
			"passed":           q.Passed,
			"started_at":       q.StartedAt,
			"completed_at":     q.CompletedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quiz insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	return nil
}

func (r *Repository) GetUserQuizzes(ctx context.Context, userID int64, tenantID string) ([]*model.Quiz, error) {
	query, args, err := squirrel.
		Select("*").
		From("quizzes").
		Where(squirrel.Eq{"user_telegram_id": userID, "tenant_id": tenantID}).
		OrderBy("started_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []quiz
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user quizzes: %w", err)
	}

	quizzes := make([]*model.Quiz, len(rows))
	for i, row := range rows {
		quizzes[i] = &model.Quiz{
			ID:             row.ID,
			UserTelegramID: row.UserTelegramID,
			TenantID:       row.TenantID,
			ExamCode:       row.ExamCode,
			Score:          row.Score,
			CorrectAnswers: row.CorrectAnswers,
			Passed:         row.Passed,
			StartedAt:      row.StartedAt,
			CompletedAt:    row.CompletedAt,
		}
	}

	return quizzes, nil
}

func (r *Repository) CreateLecture(ctx context.Context, l *model.Lecture) error {
	query, args, err := squirrel.
		Insert("lectures").
		SetMap(map[string]interface{}{
			"id":               l.ID,
			"user_telegram_id": l.UserTelegramID,
			"tenant_id":        l.TenantID,
			"topic":            l.Topic,
			"read_at":          l.ReadAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build lecture insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert lecture: %w", err)
	}

	return nil
}

func (r *Repository) GetUserLectures(ctx context.Context, userID int64, tenantID string) ([]*model.Lecture, error) {
	query, args, err := squirrel.
		Select("*").
		From("lectures").
		Where(squirrel.Eq{"user_telegram_id": userID, "tenant_id": tenantID}).
		OrderBy("read_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []lecture
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user lectures: %w", err)
	}

	lectures := make([]*model.Lecture, len(rows))
	for i, row := range rows {
		lectures[i] = &model.Lecture{
			ID:             row.ID,
			UserTelegramID: row.UserTelegramID,
			TenantID:       row.TenantID,
			Topic:          row.Topic,
			ReadAt:         row.ReadAt,
		}
	}

	return lectures, nil
}
