package service

import (
	"context"
	"fmt"
	"time"

	"certquest_miniapp/internal/model"

	"github.com/google/uuid"
)

type QuestUpdateResult struct {
	CompletedQuests []*model.QuestDefinition
	PointsEarned    int
	TitlesUnlocked  []string
}

type QuestService struct {
	repo QuestRepository
}

func NewQuestService(repo QuestRepository) *QuestService {
	return &QuestService{
		repo: repo,
	}
}

// ProcessQuestUpdates advances every active quest against the given game
// stats. Completed quests are terminal: they are never re-evaluated or
// re-rewarded. Quest reward points are applied as one additive update at
// the end, after every other point-affecting write of the pass.
func (s *QuestService) ProcessQuestUpdates(ctx context.Context, userID int64, stats *model.GameStats, tenantID string) (*QuestUpdateResult, error) {
	quests, err := s.repo.GetActiveQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active quests: %w", err)
	}

	progressRecords, err := s.repo.GetUserQuestProgress(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	byQuest := make(map[uuid.UUID]*model.UserQuestProgress, len(progressRecords))
	for _, record := range progressRecords {
		byQuest[record.QuestID] = record
	}

	now := time.Now().UTC()
	result := &QuestUpdateResult{}

	for _, quest := range quests {
		if !quest.IsActive || !quest.InWindow(now) {
			continue
		}
		if !quest.RequirementType.Known() {
			continue
		}

		record := byQuest[quest.ID]
		if record != nil && record.IsCompleted {
			continue
		}

		previous := 0
		if record != nil {
			previous = record.CurrentValue
		}
		current := questMetric(stats, quest.RequirementType)

		switch {
		case current >= quest.TargetValue:
			if err := s.repo.UpdateUserQuestProgress(ctx, userID, quest.ID, current, tenantID); err != nil {
				return nil, fmt.Errorf("failed to update quest progress: %w", err)
			}
			if err := s.repo.CompleteQuest(ctx, userID, quest.ID, tenantID); err != nil {
				return nil, fmt.Errorf("failed to complete quest: %w", err)
			}

			result.CompletedQuests = append(result.CompletedQuests, quest)
			result.PointsEarned += quest.RewardPoints

			if quest.TitleReward != nil {
				if err := s.repo.UnlockTitle(ctx, userID, *quest.TitleReward, tenantID); err != nil {
					return nil, fmt.Errorf("failed to unlock title: %w", err)
				}
				result.TitlesUnlocked = append(result.TitlesUnlocked, *quest.TitleReward)
			}

		case current > previous:
			if err := s.repo.UpdateUserQuestProgress(ctx, userID, quest.ID, current, tenantID); err != nil {
				return nil, fmt.Errorf("failed to update quest progress: %w", err)
			}
		}
		// no movement: quest left untouched
	}

	if result.PointsEarned > 0 {
		delta := result.PointsEarned
		updated, err := s.repo.UpdateUserGameStats(ctx, userID, tenantID, &model.GameStatsUpdate{
			PointsDelta: &delta,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to apply quest reward points: %w", err)
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
	}

	return result, nil
}

// GetUserQuests returns the active quest catalog and the user's progress
// records for the quest list display.
func (s *QuestService) GetUserQuests(ctx context.Context, userID int64, tenantID string) ([]*model.QuestDefinition, []*model.UserQuestProgress, error) {
	quests, err := s.repo.GetActiveQuests(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active quests: %w", err)
	}

	progress, err := s.repo.GetUserQuestProgress(ctx, userID, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get quest progress: %w", err)
	}

	return quests, progress, nil
}

func (s *QuestService) CreateQuestDefinition(ctx context.Context, quest *model.QuestDefinition) (uuid.UUID, error) {
	if !quest.RequirementType.Known() {
		return uuid.Nil, fmt.Errorf("unknown requirement type %q", quest.RequirementType)
	}
	if quest.TargetValue <= 0 {
		return uuid.Nil, fmt.Errorf("target value must be positive")
	}

	if quest.ID == uuid.Nil {
		quest.ID = uuid.New()
	}
	if err := s.repo.CreateQuest(ctx, quest); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create quest: %w", err)
	}

	return quest.ID, nil
}

func questMetric(stats *model.GameStats, t model.RequirementType) int {
	switch t {
	case model.RequirementQuizzesCompleted:
		return stats.QuizzesCompleted
	case model.RequirementPerfectScore:
		return stats.PerfectScores
	case model.RequirementStudyStreak:
		return stats.CurrentStreak
	case model.RequirementLecturesRead:
		return stats.LecturesRead
	case model.RequirementHighScore:
		return stats.HighScore
	case model.RequirementQuestionsAnswered:
		return stats.QuestionsAnswered
	case model.RequirementTotalPoints:
		return stats.TotalPoints
	default:
		return 0
	}
}
