package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"safescan/internal/api/handlers/health"
	lookupHandler "safescan/internal/api/handlers/lookup"
	profileHandler "safescan/internal/api/handlers/profile"
	recordHandler "safescan/internal/api/handlers/record"
	scanHandler "safescan/internal/api/handlers/scan"
	"safescan/internal/api/middleware"
	"safescan/internal/core/ai/cache"
	"safescan/internal/core/ai/groq"
	"safescan/internal/core/ai/service"
	"safescan/internal/core/history"
	"safescan/internal/core/lookup"
	"safescan/internal/core/profile"
	"safescan/internal/core/scan"
	"safescan/internal/infrastructure/config"
	"safescan/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置。一次掃描最多四個連續推論呼叫，每個呼叫自己會重試，
	// 所以整體上限要放寬。
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)。純文字請求用不到更大的空間。
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheManager *cache.CacheManager, historyStore *history.Store, profileStore *profile.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 請求去重與限流
	router.Use(middleware.Deduplication(cfg))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.Groq.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化推論客戶端與 AI 服務
	groqClient := groq.NewClient(&cfg.Groq)
	if groqClient == nil {
		common.LogError("Failed to initialize inference client")
		return nil, fmt.Errorf("failed to initialize inference client")
	}

	aiService := service.NewService(cfg, groqClient, cacheManager)
	if aiService == nil {
		common.LogError("Failed to initialize AI service")
		return nil, fmt.Errorf("failed to initialize AI service")
	}

	// 初始化掃描管線
	extractSvc := scan.NewExtractService(aiService)
	classifySvc := scan.NewClassifyService(aiService)
	infoSvc := scan.NewInfoService(aiService)
	safetySvc := scan.NewSafetyService(aiService)
	pipeline := scan.NewPipeline(extractSvc, classifySvc, infoSvc, safetySvc)

	// 初始化條碼查詢客戶端
	lookupClient := lookup.NewClient(&cfg.Lookup)

	common.LogInfo("Scan services initialized successfully",
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.Bool("history_enabled", cfg.History.Enabled),
		zap.String("environment", cfg.App.Env),
	)

	// 全局中間件：設置超時和共用依賴
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("cache_manager", cacheManager)

		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		scanHandlerInstance := scanHandler.NewHandler(pipeline, profileStore, historyStore)
		lookupHandlerInstance := lookupHandler.NewHandler(lookupClient)
		recordHandlerInstance := recordHandler.NewHandler(historyStore)
		profileHandlerInstance := profileHandler.NewHandler(profileStore)

		// 商品掃描
		api.POST("/scan", scanHandlerInstance.HandleScan)

		// 條碼查詢
		api.GET("/lookup/:barcode", lookupHandlerInstance.HandleLookup)

		// 歷史記錄與收藏
		recordGroup := api.Group("/users/:uid")
		{
			recordGroup.GET("/history", recordHandlerInstance.HandleListHistory)
			recordGroup.GET("/favorites", recordHandlerInstance.HandleListFavorites)
			recordGroup.POST("/favorites", recordHandlerInstance.HandleAddFavorite)
			recordGroup.DELETE("/favorites/:product_id", recordHandlerInstance.HandleRemoveFavorite)
			recordGroup.GET("/favorites/:product_id", recordHandlerInstance.HandleCheckFavorite)

			// 健康檔案
			recordGroup.GET("/profile", profileHandlerInstance.HandleGetProfile)
			recordGroup.PUT("/profile", profileHandlerInstance.HandleUpdateProfile)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
