package api

import (
	"net/http"
	"time"

	"certquest_miniapp/internal/middleware"
	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/service"
	"certquest_miniapp/pkg/auth"
	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type questRoutes struct {
	qs       service.QuestServiceI
	tenantID string
}

func NewQuestRoutes(
	handler *gin.RouterGroup,
	qs service.QuestServiceI,
	a *auth.TelegramAuth,
	authz *middleware.Authorization,
	tenantID string,
) {
	r := &questRoutes{qs: qs, tenantID: tenantID}

	h := handler.Group("/quests")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/:telegram_id", r.GetUserQuests)
		h.POST("/", authz.AdminOnly(), r.CreateQuest)
	}
}

type QuestStatusResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	RequirementType string     `json:"requirement_type"`
	TargetValue     int        `json:"target_value"`
	RewardPoints    int        `json:"reward_points"`
	TitleReward     *string    `json:"title_reward,omitempty"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	CurrentValue    int        `json:"current_value"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

type CreateQuestRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	RequirementType string     `json:"requirement_type" binding:"required"`
	TargetValue     int        `json:"target_value" binding:"required"`
	RewardPoints    int        `json:"reward_points" binding:"required"`
	TitleReward     *string    `json:"title_reward"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
}

func (r *questRoutes) GetUserQuests(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	quests, progress, err := r.qs.GetUserQuests(c.Request.Context(), id, r.tenantID)
	if err != nil {
		log.Error("failed to get user quests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user quests"})
		return
	}

	progressByQuest := make(map[uuid.UUID]*model.UserQuestProgress, len(progress))
	for _, p := range progress {
		progressByQuest[p.QuestID] = p
	}

	response := make([]QuestStatusResponse, len(quests))
	for i, quest := range quests {
		entry := QuestStatusResponse{
			ID:              quest.ID.String(),
			Title:           quest.Title,
			Description:     quest.Description,
			RequirementType: string(quest.RequirementType),
			TargetValue:     quest.TargetValue,
			RewardPoints:    quest.RewardPoints,
			TitleReward:     quest.TitleReward,
			StartsAt:        quest.StartsAt,
			EndsAt:          quest.EndsAt,
		}
		if p, ok := progressByQuest[quest.ID]; ok {
			entry.CurrentValue = p.CurrentValue
			entry.IsCompleted = p.IsCompleted
			entry.CompletedAt = p.CompletedAt
		}
		response[i] = entry
	}

	c.JSON(http.StatusOK, response)
}

func (r *questRoutes) CreateQuest(c *gin.Context) {
	log := logger.Logger()

	var req CreateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to parse create quest request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	quest := &model.QuestDefinition{
		Title:           req.Title,
		Description:     req.Description,
		RequirementType: model.RequirementType(req.RequirementType),
		TargetValue:     req.TargetValue,
		RewardPoints:    req.RewardPoints,
		TitleReward:     req.TitleReward,
		IsActive:        true,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}

	id, err := r.qs.CreateQuestDefinition(c.Request.Context(), quest)
	if err != nil {
		log.Error("failed to create quest", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}
