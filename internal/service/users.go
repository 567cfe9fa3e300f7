package service

import (
	"context"
	"errors"
	"fmt"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/repository"
)

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) RegisterUser(ctx context.Context, user *model.User) error {
	err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return err
	}

	return nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", err)
	}
	return user, nil
}

// SelectTitle points the user's display title at one of their unlocked
// titles.
func (s *UserService) SelectTitle(ctx context.Context, telegramID int64, title string) error {
	user, err := s.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}

	held := false
	for _, t := range user.Titles {
		if t == title {
			held = true
			break
		}
	}
	if !held {
		return ErrTitleNotUnlocked
	}

	if err := s.repo.SetSelectedTitle(ctx, telegramID, title); err != nil {
		return fmt.Errorf("failed to set selected title: %w", err)
	}

	return nil
}
