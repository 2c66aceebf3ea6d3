package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"fixmycity-be/cache"
	"fixmycity-be/config"
	"fixmycity-be/controllers"
	"fixmycity-be/logger"
	"fixmycity-be/notify"
	"fixmycity-be/repositories"
	"fixmycity-be/routes"
	"fixmycity-be/storage"
	authUtils "fixmycity-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		zlog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)
	zlog.Info("MongoDB connection established successfully!")

	userRepo := repositories.NewUserRepo(db)
	reportRepo := repositories.NewReportRepo(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		zlog.Fatal("Failed to create user indexes", zap.Error(err))
	}

	var analyticsCache *cache.Cache
	if cfg.RedisAddr != "" {
		rdb, err := config.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			zlog.Warn("Redis unavailable, analytics caching disabled", zap.Error(err))
		} else {
			analyticsCache = cache.New(rdb, time.Minute)
			zlog.Info("Connected to Redis")
		}
	}

	var blobs storage.BlobStore
	switch cfg.StorageBackend {
	case "s3":
		blobs, err = storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			zlog.Fatal("Failed to init S3 storage", zap.Error(err))
		}
	default:
		blobs, err = storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			zlog.Fatal("Failed to init local storage", zap.Error(err))
		}
	}

	var notifier notify.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notify.NewEmailNotifier(cfg.SMTP)
	} else {
		notifier = notify.NewLogNotifier(zlog, "./emails")
	}

	tokens := authUtils.NewTokenService([]byte(cfg.JWTSecret))
	authController := controllers.NewAuthController(userRepo, tokens, notifier, cfg.FrontendBaseURL, zlog)
	reportController := controllers.NewReportController(reportRepo, blobs, analyticsCache, zlog)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	routes.AuthRoutes(r, authController, tokens)
	routes.ReportRoutes(r, reportController, tokens)

	if cfg.StorageBackend != "s3" {
		r.Static("/uploads", cfg.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
