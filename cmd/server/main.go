// Package main runs the casting marketplace HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/castlane/backend/config"
	"github.com/castlane/backend/internal/analytics"
	"github.com/castlane/backend/internal/applications"
	"github.com/castlane/backend/internal/auth"
	"github.com/castlane/backend/internal/castingcalls"
	"github.com/castlane/backend/internal/media"
	"github.com/castlane/backend/internal/messaging"
	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/notifications"
	"github.com/castlane/backend/internal/projects"
	"github.com/castlane/backend/internal/realtime"
	"github.com/castlane/backend/internal/regions"
	"github.com/castlane/backend/internal/reviews"
	"github.com/castlane/backend/internal/studios"
	"github.com/castlane/backend/internal/subscriptions"
	"github.com/castlane/backend/internal/suggestions"
	"github.com/castlane/backend/internal/talents"
	"github.com/castlane/backend/internal/views"
	"github.com/castlane/backend/pkg/database"
	"github.com/castlane/backend/pkg/queue"
	"github.com/castlane/backend/pkg/redis"
	"github.com/castlane/backend/pkg/response"
	"github.com/castlane/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Email logs and outbound email queueing
	notifRepo := notifications.NewRepository(pool)
	enqueuer := notifications.NewEnqueuer(notifRepo, jobQueue, logger)
	notifHandler := notifications.NewHandler(notifRepo, enqueuer)

	// Talent profiles and profile view stats
	viewsRepo := views.NewRepository(pool)
	viewsHandler := views.NewHandler(viewsRepo)
	talentRepo := talents.NewRepository(pool)
	talentHandler := talents.NewHandler(talentRepo, viewsRepo, logger)

	// Studios
	studioRepo := studios.NewRepository(pool)
	studioHandler := studios.NewHandler(studioRepo)

	// Projects and talent requirements
	projectRepo := projects.NewRepository(pool)
	projectHandler := projects.NewHandler(projectRepo, studioRepo)

	// Casting calls
	callRepo := castingcalls.NewRepository(pool)
	callHandler := castingcalls.NewHandler(callRepo, projectRepo, studioRepo)

	// Applications
	appRepo := applications.NewRepository(pool)
	appHandler := applications.NewHandler(appRepo, talentRepo, studioRepo, enqueuer, hub, logger)

	// Reviews
	reviewRepo := reviews.NewRepository(pool)
	reviewHandler := reviews.NewHandler(reviewRepo, appRepo, studioRepo)

	// Region catalog
	regionRepo := regions.NewRepository(pool)
	regionHandler := regions.NewHandler(regionRepo)

	// Role suggestions (engine + per-user cache)
	suggestionRepo := suggestions.NewRepository(pool)
	engine := suggestions.NewEngine(suggestionRepo, suggestionRepo, logger)
	suggestionCache := suggestions.NewCache(engine, rdb, logger)
	suggestionHandler := suggestions.NewHandler(suggestionCache, logger)

	// Region subscriptions; entitlement changes invalidate cached suggestions
	subRepo := subscriptions.NewRepository(pool)
	subHandler := subscriptions.NewHandler(subRepo, regionRepo, suggestionCache, cfg.Billing.TrialDays, logger)
	billingWebhook := subscriptions.NewWebhookHandler(subRepo, enqueuer, suggestionCache, cfg.Billing.WebhookSecret, logger)

	// Portfolio media
	mediaRepo := media.NewRepository(pool)
	mediaHandler := media.NewHandler(mediaRepo, s3Client, jobQueue, logger)

	// Messaging
	msgRepo := messaging.NewRepository(pool)
	msgHandler := messaging.NewHandler(msgRepo, studioRepo, enqueuer, hub, logger)

	// Studio dashboard
	analyticsHandler := analytics.NewHandler(pool)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public catalog
	router.GET("/regions", regionHandler.List)
	router.GET("/regions/:id", regionHandler.Get)
	router.GET("/regions/:id/plans", regionHandler.ListPlans)
	router.GET("/casting-calls/:id", callHandler.GetOpen)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService.Identity))
	{
		api.GET("/auth/me", authHandler.Me)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Talent profile, portfolio, suggestions
		api.GET("/talents", talentHandler.Search)
		api.GET("/talents/me", talentHandler.Me)
		api.PATCH("/talents/me", talentHandler.UpdateMe)
		api.PUT("/talents/me/skills", talentHandler.ReplaceSkills)
		api.GET("/talents/me/views", viewsHandler.MyStats)
		api.GET("/talents/me/applications", appHandler.MyApplications)
		api.GET("/talents/me/suggestions", suggestionHandler.MySuggestions)
		api.GET("/talents/:id", talentHandler.Get)

		api.POST("/talents/me/media/upload-url", mediaHandler.GenerateUploadURL)
		api.POST("/talents/me/media", mediaHandler.Create)
		api.POST("/talents/me/media/ingest", mediaHandler.Ingest)
		api.GET("/talents/me/media", mediaHandler.ListMine)
		api.GET("/media/:id/download-url", mediaHandler.GenerateDownloadURL)
		api.DELETE("/media/:id", mediaHandler.Delete)

		// Studios (membership enforced by RequireStudioAccess)
		api.POST("/studios", studioHandler.Create)
		api.GET("/studios", studioHandler.ListMine)
		studio := api.Group("/studios/:id", studios.RequireStudioAccess(studioRepo))
		{
			studio.GET("", studioHandler.Get)
			studio.PUT("", studioHandler.Update)
			studio.POST("/members", studioHandler.AddMember)
			studio.GET("/members", studioHandler.ListMembers)
			studio.POST("/projects", projectHandler.Create)
			studio.GET("/projects", projectHandler.ListByStudio)
			studio.GET("/dashboard", analyticsHandler.Dashboard)
		}

		// Projects and requirements (membership checked against the project's studio)
		api.GET("/projects/:id", projectHandler.Get)
		api.PATCH("/projects/:id", projectHandler.Update)
		api.POST("/projects/:id/archive", projectHandler.Archive)
		api.POST("/projects/:id/requirements", projectHandler.CreateRequirement)
		api.GET("/projects/:id/requirements", projectHandler.ListRequirements)
		api.PATCH("/requirements/:id", projectHandler.UpdateRequirement)
		api.DELETE("/requirements/:id", projectHandler.DeleteRequirement)

		// Casting calls
		api.POST("/projects/:id/casting-calls", callHandler.Create)
		api.GET("/projects/:id/casting-calls", callHandler.ListByProject)
		api.PATCH("/casting-calls/:id", callHandler.Update)
		api.POST("/casting-calls/:id/status", callHandler.SetStatus)

		// Applications
		api.POST("/casting-calls/:id/apply", appHandler.Apply)
		api.GET("/casting-calls/:id/applications", appHandler.ListForCall)
		api.POST("/applications/:id/withdraw", appHandler.Withdraw)
		api.POST("/applications/:id/status", appHandler.SetStatus)

		// Reviews
		api.POST("/applications/:id/reviews", reviewHandler.Create)
		api.GET("/applications/:id/reviews", reviewHandler.ListForApplication)
		api.GET("/casting-calls/:id/reviews", reviewHandler.SummariesForCall)

		// Region subscriptions
		api.POST("/subscriptions", subHandler.Checkout)
		api.GET("/subscriptions", subHandler.List)
		api.DELETE("/subscriptions/:id", subHandler.Cancel)

		// Messaging
		api.POST("/messages/threads", msgHandler.OpenThread)
		api.GET("/messages/threads", msgHandler.ListThreads)
		api.GET("/messages/threads/:id/messages", msgHandler.ListMessages)
		api.POST("/messages/threads/:id/messages", msgHandler.Send)
		api.POST("/messages/threads/:id/read", msgHandler.MarkRead)

		// Email logs
		api.GET("/notifications/emails", notifHandler.List)

		// Admin catalog management
		admin := api.Group("/admin", middleware.RequireRole("admin"))
		{
			admin.POST("/regions", regionHandler.Create)
			admin.PUT("/regions/:id", regionHandler.Update)
			admin.POST("/regions/:id/plans", regionHandler.CreatePlan)
			admin.PATCH("/plans/:id", regionHandler.SetPlanActive)
			admin.POST("/locations", regionHandler.CreateLocation)
			admin.PUT("/locations/:id", regionHandler.UpdateLocation)
			admin.POST("/emails/:id/resend", notifHandler.Resend)
		}
	}

	// Webhooks (no JWT; signature verified in handler when configured)
	router.POST("/webhooks/billing", billingWebhook.Handle)

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtService.Identity))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
