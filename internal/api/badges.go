package api

import (
	"net/http"

	"certquest_miniapp/internal/middleware"
	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/service"
	"certquest_miniapp/pkg/auth"
	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type badgeRoutes struct {
	bs       service.BadgeServiceI
	tenantID string
}

func NewBadgeRoutes(
	handler *gin.RouterGroup,
	bs service.BadgeServiceI,
	a *auth.TelegramAuth,
	authz *middleware.Authorization,
	tenantID string,
) {
	r := &badgeRoutes{bs: bs, tenantID: tenantID}

	h := handler.Group("/badges")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/:telegram_id", r.GetBadgeProgress)
		h.POST("/", authz.AdminOnly(), r.CreateBadge)
	}
}

type BadgeProgressResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Earned       bool   `json:"earned"`
	Progress     int    `json:"progress"`
	ProgressText string `json:"progress_text"`
}

type CreateBadgeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Requirement struct {
		Type  string `json:"type" binding:"required"`
		Value int    `json:"value" binding:"required"`
	} `json:"requirement" binding:"required"`
}

func (r *badgeRoutes) GetBadgeProgress(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	entries, err := r.bs.GetBadgeProgress(c.Request.Context(), id, r.tenantID)
	if err != nil {
		log.Error("failed to get badge progress", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get badge progress"})
		return
	}

	response := make([]BadgeProgressResponse, len(entries))
	for i, entry := range entries {
		response[i] = BadgeProgressResponse{
			ID:           entry.Badge.ID.String(),
			Name:         entry.Badge.Name,
			Description:  entry.Badge.Description,
			Icon:         entry.Badge.Icon,
			Earned:       entry.Earned,
			Progress:     entry.Progress.Percentage,
			ProgressText: entry.Progress.Text(),
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *badgeRoutes) CreateBadge(c *gin.Context) {
	log := logger.Logger()

	var req CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to parse create badge request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	badge := &model.BadgeDefinition{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Requirement: &model.BadgeRequirement{
			Type:  model.RequirementType(req.Requirement.Type),
			Value: req.Requirement.Value,
		},
	}

	id, err := r.bs.CreateBadgeDefinition(c.Request.Context(), badge)
	if err != nil {
		log.Error("failed to create badge", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}
