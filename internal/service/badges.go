package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/repository"

	"github.com/google/uuid"
)

// Aggregates is the statistics snapshot badge requirements are checked
// against. Built from the user's activity history plus current game stats.
type Aggregates struct {
	QuizzesCompleted  int
	PerfectScores     int
	HighScore         int
	QuestionsAnswered int
	LecturesRead      int
	CurrentStreak     int
	TotalPoints       int
}

func BuildAggregates(stats *model.GameStats, quizzes []*model.Quiz, lectures []*model.Lecture) Aggregates {
	agg := Aggregates{
		CurrentStreak: stats.CurrentStreak,
		TotalPoints:   stats.TotalPoints,
		LecturesRead:  len(lectures),
	}

	for _, quiz := range quizzes {
		if !quiz.Completed() {
			continue
		}
		agg.QuizzesCompleted++
		agg.QuestionsAnswered += quiz.CorrectAnswers
		if *quiz.Score == MaxScore {
			agg.PerfectScores++
		}
		if *quiz.Score > agg.HighScore {
			agg.HighScore = *quiz.Score
		}
	}

	return agg
}

func (a Aggregates) metric(t model.RequirementType) int {
	switch t {
	case model.RequirementQuizzesCompleted:
		return a.QuizzesCompleted
	case model.RequirementPerfectScore:
		return a.PerfectScores
	case model.RequirementStudyStreak:
		return a.CurrentStreak
	case model.RequirementLecturesRead:
		return a.LecturesRead
	case model.RequirementHighScore:
		return a.HighScore
	case model.RequirementQuestionsAnswered:
		return a.QuestionsAnswered
	case model.RequirementTotalPoints:
		return a.TotalPoints
	default:
		return 0
	}
}

type BadgeService struct {
	repo BadgeRepository
}

func NewBadgeService(repo BadgeRepository) *BadgeService {
	return &BadgeService{
		repo: repo,
	}
}

// Evaluate awards every not-yet-earned badge whose requirement is now
// satisfied by agg and returns the newly awarded definitions. Badges with
// a missing or unrecognized requirement are skipped. When kinds is
// non-empty, only badges of those requirement kinds are considered.
//
// The in-memory earned set can be stale under concurrent writers; the
// unique key on (user, badge, tenant) in storage is the final authority,
// and a duplicate insert is treated as "already earned", not an error.
func (s *BadgeService) Evaluate(ctx context.Context, userID int64, tenantID string, agg Aggregates, kinds ...model.RequirementType) ([]*model.BadgeDefinition, error) {
	catalog, err := s.repo.GetBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge catalog: %w", err)
	}

	awards, err := s.repo.GetUserBadges(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}

	earned := make(map[uuid.UUID]struct{}, len(awards))
	for _, award := range awards {
		earned[award.BadgeID] = struct{}{}
	}

	var newlyEarned []*model.BadgeDefinition
	for _, badge := range catalog {
		req := badge.Requirement
		if req == nil || !req.Type.Known() {
			continue
		}
		if len(kinds) > 0 && !containsKind(kinds, req.Type) {
			continue
		}
		if _, ok := earned[badge.ID]; ok {
			continue
		}
		if agg.metric(req.Type) < req.Value {
			continue
		}

		_, err := s.repo.CreateUserBadge(ctx, &model.UserBadgeAward{
			UserTelegramID: userID,
			BadgeID:        badge.ID,
			TenantID:       tenantID,
			AwardedAt:      time.Now().UTC(),
			Progress:       100,
		})
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return nil, fmt.Errorf("failed to create badge award: %w", err)
		}

		newlyEarned = append(newlyEarned, badge)
	}

	return newlyEarned, nil
}

// ProgressFor computes display progress toward a single badge. Earned
// badges always report 100% regardless of the underlying counts; the
// percentage is otherwise rounded and capped at 100.
func ProgressFor(badge *model.BadgeDefinition, agg Aggregates, earned bool) model.BadgeProgress {
	progress := model.BadgeProgress{}
	req := badge.Requirement
	if req != nil && req.Type.Known() {
		progress.Current = agg.metric(req.Type)
		progress.Required = req.Value
	}

	if earned {
		progress.Percentage = 100
		return progress
	}

	if progress.Required > 0 {
		pct := int(math.Round(float64(progress.Current) / float64(progress.Required) * 100))
		if pct > 100 {
			pct = 100
		}
		progress.Percentage = pct
	}

	return progress
}

// GetBadgeProgress returns one entry per catalog badge for the progress
// display, earned or not.
func (s *BadgeService) GetBadgeProgress(ctx context.Context, userID int64, tenantID string) ([]*model.BadgeProgressEntry, error) {
	catalog, err := s.repo.GetBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge catalog: %w", err)
	}

	awards, err := s.repo.GetUserBadges(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}

	stats, err := s.repo.GetUserGameStats(ctx, userID, tenantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get game stats: %w", err)
		}
		stats = model.NewGameStats(userID, tenantID)
	}

	quizzes, err := s.repo.GetUserQuizzes(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user quizzes: %w", err)
	}

	lectures, err := s.repo.GetUserLectures(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user lectures: %w", err)
	}

	earned := make(map[uuid.UUID]struct{}, len(awards))
	for _, award := range awards {
		earned[award.BadgeID] = struct{}{}
	}

	agg := BuildAggregates(stats, quizzes, lectures)

	entries := make([]*model.BadgeProgressEntry, len(catalog))
	for i, badge := range catalog {
		_, isEarned := earned[badge.ID]
		entries[i] = &model.BadgeProgressEntry{
			Badge:    badge,
			Earned:   isEarned,
			Progress: ProgressFor(badge, agg, isEarned),
		}
	}

	return entries, nil
}

// CreateBadgeDefinition validates and stores a new catalog entry.
// Requirements are checked here, at the authoring boundary, so evaluation
// never sees a malformed one from our own admin surface.
func (s *BadgeService) CreateBadgeDefinition(ctx context.Context, badge *model.BadgeDefinition) (uuid.UUID, error) {
	if badge.Requirement == nil {
		return uuid.Nil, fmt.Errorf("badge requirement is required")
	}
	if !badge.Requirement.Type.Known() {
		return uuid.Nil, fmt.Errorf("unknown requirement type %q", badge.Requirement.Type)
	}
	if badge.Requirement.Value <= 0 {
		return uuid.Nil, fmt.Errorf("requirement value must be positive")
	}

	if badge.ID == uuid.Nil {
		badge.ID = uuid.New()
	}
	if err := s.repo.CreateBadge(ctx, badge); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create badge: %w", err)
	}

	return badge.ID, nil
}

func containsKind(kinds []model.RequirementType, t model.RequirementType) bool {
	for _, kind := range kinds {
		if kind == t {
			return true
		}
	}
	return false
}
