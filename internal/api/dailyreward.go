package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"certquest_miniapp/internal/service"
	"certquest_miniapp/pkg/auth"
	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type dailyRewardRoutes struct {
	ds       service.DailyRewardServiceI
	hub      *EventHub
	tenantID string
}

func NewDailyRewardRoutes(
	handler *gin.RouterGroup,
	ds service.DailyRewardServiceI,
	hub *EventHub,
	a *auth.TelegramAuth,
	tenantID string,
) {
	r := &dailyRewardRoutes{ds: ds, hub: hub, tenantID: tenantID}

	h := handler.Group("/daily-rewards")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/:telegram_id", r.GetStatus)
		h.POST("/:telegram_id/:day", r.Claim)
	}
}

type DailyRewardStatusResponse struct {
	Day                 int        `json:"day"`
	Points              int        `json:"points"`
	StreakFreezeGranted bool       `json:"streak_freeze_granted"`
	Claimed             bool       `json:"claimed"`
	ClaimedAt           *time.Time `json:"claimed_at,omitempty"`
}

type DailyRewardClaimResponse struct {
	Day                 int  `json:"day"`
	PointsEarned        int  `json:"points_earned"`
	StreakFreezeGranted bool `json:"streak_freeze_granted"`
}

func (r *dailyRewardRoutes) GetStatus(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	statuses, err := r.ds.Status(c.Request.Context(), id, r.tenantID)
	if err != nil {
		log.Error("failed to get daily reward status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get daily reward status"})
		return
	}

	response := make([]DailyRewardStatusResponse, len(statuses))
	for i, status := range statuses {
		response[i] = DailyRewardStatusResponse{
			Day:                 status.Day,
			Points:              status.Points,
			StreakFreezeGranted: status.StreakFreezeGranted,
			Claimed:             status.Claimed,
			ClaimedAt:           status.ClaimedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *dailyRewardRoutes) Claim(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		log.Error("failed to parse reward day", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward day"})
		return
	}

	result, err := r.ds.Claim(c.Request.Context(), id, day, r.tenantID)
	switch {
	case errors.Is(err, service.ErrInvalidRewardDay):
		c.JSON(http.StatusBadRequest, gin.H{"error": "reward day does not exist"})
		return
	case errors.Is(err, service.ErrRewardAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "reward already claimed"})
		return
	case err != nil:
		log.Error("failed to claim daily reward", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim daily reward"})
		return
	}

	r.hub.Publish(id, Event{Type: "daily_reward_claimed", Payload: map[string]any{
		"day":    result.Day,
		"points": result.PointsEarned,
	}})

	c.JSON(http.StatusOK, DailyRewardClaimResponse{
		Day:                 result.Day,
		PointsEarned:        result.PointsEarned,
		StreakFreezeGranted: result.StreakFreezeGranted,
	})
}
