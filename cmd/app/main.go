package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"certquest_miniapp/internal/api"
	"certquest_miniapp/internal/middleware"
	"certquest_miniapp/internal/repository"
	"certquest_miniapp/internal/service"
	"certquest_miniapp/pkg/auth"
	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	badgeService := service.NewBadgeService(repo)
	userService := service.NewUserService(repo)
	progressService := service.NewProgressService(repo, badgeService)
	questService := service.NewQuestService(repo)
	dailyRewardService := service.NewDailyRewardService(repo)

	var notifier *service.NotifierService
	if cfg.Notifier.Enabled {
		notifier, err = service.NewNotifierService(service.NotifierConfig{
			BotToken: cfg.TelegramAuth.TelegramBotToken,
			Debug:    cfg.Notifier.Debug,
		}, repo)
		if err != nil {
			zapLogger.Fatal("Failed to initialize notifier", zap.Error(err))
		}
	}

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authz := middleware.NewAuthorization(userService)
	hub := api.NewEventHub()

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, telegramAuth, cfg.TenantID)
	api.NewProgressRoutes(a, progressService, questService, notifier, hub, telegramAuth, cfg.TenantID)
	api.NewBadgeRoutes(a, badgeService, telegramAuth, authz, cfg.TenantID)
	api.NewQuestRoutes(a, questService, telegramAuth, authz, cfg.TenantID)
	api.NewDailyRewardRoutes(a, dailyRewardService, hub, telegramAuth, cfg.TenantID)
	api.NewWsRoutes(a, hub)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
