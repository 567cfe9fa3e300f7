package service

import (
	"context"
	"errors"
	"fmt"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/repository"
)

type DailyRewardClaimResult struct {
	Day                 int
	PointsEarned        int
	StreakFreezeGranted bool
}

type DailyRewardService struct {
	repo DailyRewardRepository
}

func NewDailyRewardService(repo DailyRewardRepository) *DailyRewardService {
	return &DailyRewardService{
		repo: repo,
	}
}

// Claim fulfills a login reward for one calendar slot. Validation order:
// the day must exist in the catalog, then the user must not already hold
// a claim for it. Claim rows are append-only; the unique key on
// (user, day, tenant) rejects a racing duplicate even when the read
// above saw no claim. Reward points count toward levels like any other
// award, so the stored level is recomputed from the fresh total.
func (s *DailyRewardService) Claim(ctx context.Context, userID int64, day int, tenantID string) (*DailyRewardClaimResult, error) {
	rewards, err := s.repo.GetDailyRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily reward catalog: %w", err)
	}

	var reward *model.DailyRewardDefinition
	for _, r := range rewards {
		if r.Day == day {
			reward = r
			break
		}
	}
	if reward == nil {
		return nil, ErrInvalidRewardDay
	}

	claim, err := s.repo.GetUserDailyReward(ctx, userID, day, tenantID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get existing claim: %w", err)
	}
	if claim != nil {
		return nil, ErrRewardAlreadyClaimed
	}

	if err := s.repo.CreateUserDailyReward(ctx, userID, day, tenantID); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrRewardAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to record claim: %w", err)
	}

	update := &model.GameStatsUpdate{
		PointsDelta: &reward.Points,
	}
	if reward.StreakFreezeGranted {
		one := 1
		update.StreakFreezesDelta = &one
	}
	updated, err := s.repo.UpdateUserGameStats(ctx, userID, tenantID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to apply reward: %w", err)
	}

	level, nextLevel := LevelForPoints(updated.TotalPoints)
	if level != updated.Level {
		_, err = s.repo.UpdateUserGameStats(ctx, userID, tenantID, &model.GameStatsUpdate{
			Level:           &level,
			NextLevelPoints: &nextLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update level: %w", err)
		}
	}

	return &DailyRewardClaimResult{
		Day:                 day,
		PointsEarned:        reward.Points,
		StreakFreezeGranted: reward.StreakFreezeGranted,
	}, nil
}

// Status returns the full reward cycle with the user's claimed flags for
// the reward calendar.
func (s *DailyRewardService) Status(ctx context.Context, userID int64, tenantID string) ([]*model.DailyRewardStatus, error) {
	rewards, err := s.repo.GetDailyRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily reward catalog: %w", err)
	}

	statuses := make([]*model.DailyRewardStatus, len(rewards))
	for i, reward := range rewards {
		status := &model.DailyRewardStatus{DailyRewardDefinition: *reward}

		claim, err := s.repo.GetUserDailyReward(ctx, userID, reward.Day, tenantID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get claim for day %d: %w", reward.Day, err)
		}
		if claim != nil {
			status.Claimed = true
			claimedAt := claim.ClaimedAt
			status.ClaimedAt = &claimedAt
		}

		statuses[i] = status
	}

	return statuses, nil
}
