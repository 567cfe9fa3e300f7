package api

import (
	"net/http"
	"strconv"
	"time"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/service"
	"certquest_miniapp/pkg/auth"
	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type progressRoutes struct {
	ps       service.ProgressServiceI
	qs       service.QuestServiceI
	notifier *service.NotifierService
	hub      *EventHub
	a        *auth.TelegramAuth
	tenantID string
}

func NewProgressRoutes(
	handler *gin.RouterGroup,
	ps service.ProgressServiceI,
	qs service.QuestServiceI,
	notifier *service.NotifierService,
	hub *EventHub,
	a *auth.TelegramAuth,
	tenantID string,
) {
	r := &progressRoutes{
		ps:       ps,
		qs:       qs,
		notifier: notifier,
		hub:      hub,
		a:        a,
		tenantID: tenantID,
	}

	h := handler.Group("/progress")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/:telegram_id/quiz", r.CompleteQuiz)
		h.POST("/:telegram_id/lecture", r.CompleteLecture)
		h.GET("/:telegram_id/stats", r.GetGameStats)
	}
}

type CompleteQuizRequest struct {
	ExamCode       string `json:"exam_code" binding:"required"`
	Score          *int   `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
	Passed         bool   `json:"passed"`
	Completed      bool   `json:"completed"`
}

type BadgeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type QuizCompletionResponse struct {
	PointsEarned    int             `json:"points_earned"`
	NewBadges       []BadgeResponse `json:"new_badges"`
	LevelUp         bool            `json:"level_up"`
	NewLevel        int             `json:"new_level"`
	QuestPoints     int             `json:"quest_points"`
	CompletedQuests []string        `json:"completed_quests"`
	TitlesUnlocked  []string        `json:"titles_unlocked"`
}

type LectureReadRequest struct {
	Topic string `json:"topic" binding:"required"`
}

type LectureReadResponse struct {
	PointsEarned int             `json:"points_earned"`
	NewBadges    []BadgeResponse `json:"new_badges"`
}

type GameStatsResponse struct {
	TotalPoints       int        `json:"total_points"`
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	LastActivityDate  *time.Time `json:"last_activity_date,omitempty"`
	Level             int        `json:"level"`
	NextLevelPoints   int        `json:"next_level_points"`
	TotalBadgesEarned int        `json:"total_badges_earned"`
	StreakFreezes     int        `json:"streak_freezes"`
	QuizzesCompleted  int        `json:"quizzes_completed"`
	LecturesRead      int        `json:"lectures_read"`
}

func (r *progressRoutes) CompleteQuiz(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	var req CompleteQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to parse quiz completion request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	quiz := &model.Quiz{
		ID:             uuid.New(),
		UserTelegramID: id,
		TenantID:       r.tenantID,
		ExamCode:       req.ExamCode,
		Score:          req.Score,
		CorrectAnswers: req.CorrectAnswers,
		Passed:         req.Passed,
		StartedAt:      now,
	}
	if req.Completed {
		quiz.CompletedAt = &now
	}

	if err := r.ps.RecordQuiz(ctx, quiz); err != nil {
		log.Error("failed to record quiz", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record quiz"})
		return
	}

	result, err := r.ps.ProcessQuizCompletion(ctx, id, quiz, r.tenantID)
	if err != nil {
		log.Error("failed to process quiz completion", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process quiz completion"})
		return
	}

	// quest rewards are applied after every other point update of the pass
	stats, err := r.ps.GetUserGameStats(ctx, id, r.tenantID)
	if err != nil {
		log.Error("failed to get game stats for quest updates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process quest updates"})
		return
	}

	questResult, err := r.qs.ProcessQuestUpdates(ctx, id, stats, r.tenantID)
	if err != nil {
		log.Error("failed to process quest updates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process quest updates"})
		return
	}

	if r.notifier != nil && len(result.NewBadges) > 0 {
		r.notifier.NotifyNewBadges(ctx, id, r.tenantID, result.NewBadges)
	}
	r.publishProgressEvents(id, result.NewBadges, result.LevelUp, result.NewLevel, questResult)

	response := QuizCompletionResponse{
		PointsEarned: result.PointsEarned,
		NewBadges:    badgeResponses(result.NewBadges),
		LevelUp:      result.LevelUp,
		NewLevel:     result.NewLevel,
		QuestPoints:  questResult.PointsEarned,
	}
	for _, quest := range questResult.CompletedQuests {
		response.CompletedQuests = append(response.CompletedQuests, quest.Title)
	}
	response.TitlesUnlocked = questResult.TitlesUnlocked

	c.JSON(http.StatusOK, response)
}

func (r *progressRoutes) CompleteLecture(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	var req LectureReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to parse lecture read request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()

	lecture := &model.Lecture{
		ID:             uuid.New(),
		UserTelegramID: id,
		TenantID:       r.tenantID,
		Topic:          req.Topic,
		ReadAt:         time.Now().UTC(),
	}
	if err := r.ps.RecordLecture(ctx, lecture); err != nil {
		log.Error("failed to record lecture", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record lecture"})
		return
	}

	result, err := r.ps.ProcessLectureRead(ctx, id, r.tenantID)
	if err != nil {
		log.Error("failed to process lecture read", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process lecture read"})
		return
	}

	if r.notifier != nil && len(result.NewBadges) > 0 {
		r.notifier.NotifyNewBadges(ctx, id, r.tenantID, result.NewBadges)
	}
	for _, badge := range result.NewBadges {
		r.hub.Publish(id, Event{Type: "badge_earned", Payload: map[string]any{"badge": badge.Name}})
	}

	c.JSON(http.StatusOK, LectureReadResponse{
		PointsEarned: result.PointsEarned,
		NewBadges:    badgeResponses(result.NewBadges),
	})
}

func (r *progressRoutes) GetGameStats(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	stats, err := r.ps.GetUserGameStats(c.Request.Context(), id, r.tenantID)
	if err != nil {
		log.Error("failed to get game stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get game stats"})
		return
	}

	c.JSON(http.StatusOK, GameStatsResponse{
		TotalPoints:       stats.TotalPoints,
		CurrentStreak:     stats.CurrentStreak,
		LongestStreak:     stats.LongestStreak,
		LastActivityDate:  stats.LastActivityDate,
		Level:             stats.Level,
		NextLevelPoints:   stats.NextLevelPoints,
		TotalBadgesEarned: stats.TotalBadgesEarned,
		StreakFreezes:     stats.StreakFreezes,
		QuizzesCompleted:  stats.QuizzesCompleted,
		LecturesRead:      stats.LecturesRead,
	})
}

func (r *progressRoutes) publishProgressEvents(userID int64, badges []*model.BadgeDefinition, levelUp bool, newLevel int, quests *service.QuestUpdateResult) {
	for _, badge := range badges {
		r.hub.Publish(userID, Event{Type: "badge_earned", Payload: map[string]any{"badge": badge.Name}})
	}
	if levelUp {
		r.hub.Publish(userID, Event{Type: "level_up", Payload: map[string]any{"level": newLevel}})
	}
	for _, quest := range quests.CompletedQuests {
		r.hub.Publish(userID, Event{Type: "quest_completed", Payload: map[string]any{
			"quest":  quest.Title,
			"points": quest.RewardPoints,
		}})
	}
}

func badgeResponses(badges []*model.BadgeDefinition) []BadgeResponse {
	responses := make([]BadgeResponse, len(badges))
	for i, badge := range badges {
		responses[i] = BadgeResponse{
			ID:          badge.ID.String(),
			Name:        badge.Name,
			Description: badge.Description,
			Icon:        badge.Icon,
		}
	}
	return responses
}

func parseTelegramID(c *gin.Context) (int64, bool) {
	log := logger.Logger()

	telegramID := c.Param("telegram_id")
	id, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return 0, false
	}
	return id, true
}
