// Package main runs the background job worker (media ingest, email delivery, role alerts).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/castlane/backend/config"
	"github.com/castlane/backend/internal/media"
	"github.com/castlane/backend/internal/notifications"
	"github.com/castlane/backend/internal/subscriptions"
	"github.com/castlane/backend/internal/suggestions"
	"github.com/castlane/backend/internal/worker"
	"github.com/castlane/backend/pkg/database"
	"github.com/castlane/backend/pkg/mailer"
	"github.com/castlane/backend/pkg/queue"
	"github.com/castlane/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		MediaBucket:          cfg.AWS.MediaBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	sesMailer, err := mailer.New(ctx, mailer.Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		FromEmail:       cfg.Email.FromAddress,
	}, logger)
	if err != nil {
		logger.Fatal("mailer", zap.Error(err))
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	mediaRepo := media.NewRepository(pool)
	emailRepo := notifications.NewRepository(pool)
	enqueuer := notifications.NewEnqueuer(emailRepo, jobQueue, logger)
	subRepo := subscriptions.NewRepository(pool)

	// Alert digests bypass the HTTP cache and always score fresh.
	suggestionRepo := suggestions.NewRepository(pool)
	engine := suggestions.NewEngine(suggestionRepo, suggestionRepo, logger)

	processor := worker.NewProcessor(jobQueue, mediaRepo, emailRepo, sesMailer, s3Client,
		engine, subRepo, enqueuer, cfg.Alerts.MinScore, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go processor.RunAlertSweep(workerCtx, cfg.Alerts.Interval)
	logger.Info("worker started",
		zap.Int("alert_min_score", cfg.Alerts.MinScore),
		zap.Duration("alert_interval", cfg.Alerts.Interval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
