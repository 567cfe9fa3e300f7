package api

import (
	"errors"
	"net/http"
	"time"

	"certquest_miniapp/internal/model"
	"certquest_miniapp/internal/service"
	"certquest_miniapp/pkg/auth"
	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us       service.UserServiceI
	tenantID string
}

func NewUserRoutes(
	handler *gin.RouterGroup,
	us service.UserServiceI,
	a *auth.TelegramAuth,
	tenantID string,
) {
	r := &userRoutes{us: us, tenantID: tenantID}

	h := handler.Group("/users")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/register", r.Register)
		h.GET("/:telegram_id", r.GetUser)
		h.PATCH("/:telegram_id/title", r.SelectTitle)
	}
}

type RegisterUserRequest struct {
	Handle string `json:"handle"`
}

type UserResponse struct {
	TelegramID       int64     `json:"telegram_id"`
	Handle           string    `json:"handle"`
	Username         string    `json:"username"`
	SelectedTitle    *string   `json:"selected_title,omitempty"`
	Titles           []string  `json:"titles"`
	RegistrationDate time.Time `json:"registration_date"`
}

type SelectTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

func (r *userRoutes) Register(c *gin.Context) {
	log := logger.Logger()

	userData, exists := c.Get("telegram_user")
	if !exists {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	telegramUser, ok := userData.(*auth.TelegramUserData)
	if !ok {
		log.Error("invalid type assertion for telegram user data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to parse register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	handle := req.Handle
	if handle == "" {
		handle = telegramUser.Handle
	}

	user := &model.User{
		TelegramID:       telegramUser.ID,
		Handle:           handle,
		Username:         telegramUser.Username,
		TenantID:         r.tenantID,
		RegistrationDate: time.Now().UTC(),
		AuthDate:         telegramUser.AuthDate,
	}

	if err := r.us.RegisterUser(c.Request.Context(), user); err != nil {
		log.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, userResponse(user))
}

func (r *userRoutes) GetUser(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	user, err := r.us.GetUserByTelegramID(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

func (r *userRoutes) SelectTitle(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	var req SelectTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to parse select title request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := r.us.SelectTitle(c.Request.Context(), id, req.Title)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case errors.Is(err, service.ErrTitleNotUnlocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "title not unlocked"})
		return
	case err != nil:
		log.Error("failed to select title", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to select title"})
		return
	}

	c.Status(http.StatusNoContent)
}

func userResponse(user *model.User) UserResponse {
	return UserResponse{
		TelegramID:       user.TelegramID,
		Handle:           user.Handle,
		Username:         user.Username,
		SelectedTitle:    user.SelectedTitle,
		Titles:           user.Titles,
		RegistrationDate: user.RegistrationDate,
	}
}
