package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/repository"
)

type QuizCompletionResult struct {
	PointsEarned int
	NewBadges    []*model.BadgeDefinition
	LevelUp      bool
	NewLevel     int
}

type LectureReadResult struct {
	PointsEarned int
	NewBadges    []*model.BadgeDefinition
}

// ProgressService orchestrates the scoring pipeline for study events.
// Calls for the same user are serialized through a per-user mutex: the
// store has no cross-document transaction, so two concurrent pipelines
// reading the same pre-update stats would otherwise lose an increment.
// Counter fields are additionally written as atomic increments by the
// repository. Cross-process races are not covered by the lock.
type ProgressService struct {
	repo   ProgressRepository
	badges *BadgeService

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewProgressService(repo ProgressRepository, badges *BadgeService) *ProgressService {
	return &ProgressService{
		repo:   repo,
		badges: badges,
		locks:  make(map[int64]*sync.Mutex),
	}
}

func (s *ProgressService) lockUser(userID int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ProcessQuizCompletion runs the fixed pipeline for a finished quiz:
// points computed, streak updated, game stats persisted, badges
// evaluated, badge count reconciled. Steps already persisted are not
// rolled back when a later step fails; callers must not blindly retry.
func (s *ProgressService) ProcessQuizCompletion(ctx context.Context, userID int64, quiz *model.Quiz, tenantID string) (*QuizCompletionResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	stats, err := s.getOrInitStats(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}

	points := QuizPoints(quiz)
	now := time.Now().UTC()
	streak := AdvanceStreak(stats.CurrentStreak, stats.LastActivityDate, now)

	longest := stats.LongestStreak
	if streak.CurrentStreak > longest {
		longest = streak.CurrentStreak
	}

	level, nextLevel := LevelForPoints(stats.TotalPoints + points)
	levelUp := level > stats.Level

	today := midnight(now)
	update := &model.GameStatsUpdate{
		PointsDelta:      &points,
		CurrentStreak:    &streak.CurrentStreak,
		LongestStreak:    &longest,
		LastActivityDate: &today,
		Level:            &level,
		NextLevelPoints:  &nextLevel,
	}

	one := 1
	if quiz.Completed() {
		update.QuizzesCompletedDelta = &one
		if quiz.CorrectAnswers > 0 {
			update.QuestionsAnsweredDelta = &quiz.CorrectAnswers
		}
		if *quiz.Score == MaxScore {
			update.PerfectScoresDelta = &one
		}
		if *quiz.Score > stats.HighScore {
			update.HighScore = quiz.Score
		}
	}

	updated, err := s.repo.UpdateUserGameStats(ctx, userID, tenantID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to persist game stats: %w", err)
	}

	newBadges, err := s.evaluateBadges(ctx, userID, tenantID, updated)
	if err != nil {
		return nil, err
	}

	return &QuizCompletionResult{
		PointsEarned: points,
		NewBadges:    newBadges,
		LevelUp:      levelUp,
		NewLevel:     level,
	}, nil
}

// ProcessLectureRead awards the flat per-lecture points and evaluates
// lecture badges only.
func (s *ProgressService) ProcessLectureRead(ctx context.Context, userID int64, tenantID string) (*LectureReadResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	stats, err := s.getOrInitStats(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}

	points := LectureReadPoints
	level, nextLevel := LevelForPoints(stats.TotalPoints + points)

	one := 1
	updated, err := s.repo.UpdateUserGameStats(ctx, userID, tenantID, &model.GameStatsUpdate{
		PointsDelta:       &points,
		LecturesReadDelta: &one,
		Level:             &level,
		NextLevelPoints:   &nextLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist game stats: %w", err)
	}

	lectures, err := s.repo.GetUserLectures(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user lectures: %w", err)
	}

	agg := BuildAggregates(updated, nil, lectures)
	newBadges, err := s.badges.Evaluate(ctx, userID, tenantID, agg, model.RequirementLecturesRead)
	if err != nil {
		return nil, err
	}

	if err := s.reconcileBadgeCount(ctx, userID, tenantID, len(newBadges)); err != nil {
		return nil, err
	}

	return &LectureReadResult{
		PointsEarned: points,
		NewBadges:    newBadges,
	}, nil
}

func (s *ProgressService) GetUserGameStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error) {
	return s.getOrInitStats(ctx, userID, tenantID)
}

func (s *ProgressService) RecordQuiz(ctx context.Context, quiz *model.Quiz) error {
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return fmt.Errorf("failed to record quiz: %w", err)
	}
	return nil
}

func (s *ProgressService) RecordLecture(ctx context.Context, lecture *model.Lecture) error {
	if err := s.repo.CreateLecture(ctx, lecture); err != nil {
		return fmt.Errorf("failed to record lecture: %w", err)
	}
	return nil
}

func (s *ProgressService) getOrInitStats(ctx context.Context, userID int64, tenantID string) (*model.GameStats, error) {
	stats, err := s.repo.GetUserGameStats(ctx, userID, tenantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get game stats: %w", err)
		}
		stats = model.NewGameStats(userID, tenantID)
	}
	return stats, nil
}

func (s *ProgressService) evaluateBadges(ctx context.Context, userID int64, tenantID string, stats *model.GameStats) ([]*model.BadgeDefinition, error) {
	quizzes, err := s.repo.GetUserQuizzes(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user quizzes: %w", err)
	}

	lectures, err := s.repo.GetUserLectures(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user lectures: %w", err)
	}

	agg := BuildAggregates(stats, quizzes, lectures)
	newBadges, err := s.badges.Evaluate(ctx, userID, tenantID, agg)
	if err != nil {
		return nil, err
	}

	if err := s.reconcileBadgeCount(ctx, userID, tenantID, len(newBadges)); err != nil {
		return nil, err
	}

	return newBadges, nil
}

// reconcileBadgeCount bumps TotalBadgesEarned once per evaluation pass,
// by the batch size, not once per badge.
func (s *ProgressService) reconcileBadgeCount(ctx context.Context, userID int64, tenantID string, awarded int) error {
	if awarded == 0 {
		return nil
	}
	_, err := s.repo.UpdateUserGameStats(ctx, userID, tenantID, &model.GameStatsUpdate{
		BadgesEarnedDelta: &awarded,
	})
	if err != nil {
		return fmt.Errorf("failed to reconcile badge count: %w", err)
	}
	return nil
}
