package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bitcourse/backend/internal/config"
	"github.com/bitcourse/backend/internal/handler"
	"github.com/bitcourse/backend/internal/middleware"
	"github.com/bitcourse/backend/internal/model"
	"github.com/bitcourse/backend/internal/repository"
	"github.com/bitcourse/backend/internal/service"
	"github.com/bitcourse/backend/pkg/database"
	"github.com/bitcourse/backend/pkg/logger"
	"github.com/bitcourse/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(database.Options{
		DSN:              cfg.DatabaseURL,
		Schema:           cfg.DBSchema,
		AcquireTimeout:   cfg.DBAcquireTimeout,
		StatementTimeout: cfg.DBStatementTimeout,
		MaxOpenConns:     cfg.DBMaxConns,
	}, zlog)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zlog.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(redisOpts)
		defer func() { _ = rdb.Close() }()
	}

	store, err := storage.NewLocalStore(cfg.UploadRoot)
	if err != nil {
		zlog.Fatal("failed to initialize file storage", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, zlog)
	courseRepo := repository.NewCourseRepository(db, zlog)
	reviewRepo := repository.NewReviewRepository(db, zlog)
	sectionRepo := repository.NewSectionRepository(db, zlog)
	videoRepo := repository.NewVideoRepository(db, zlog)
	attachmentRepo := repository.NewAttachmentRepository(db, zlog)
	feedbackRepo := repository.NewFeedbackRepository(db, zlog)

	sessionManager := middleware.NewSessionManager(cfg.SessionSecret, cfg.SessionMaxAge, userRepo, zlog)
	limits := service.RateLimits{Login: cfg.RateLimitLogin}

	authService := service.NewAuthService(userRepo, rdb, cfg.Pepper, limits, zlog)
	userService := service.NewUserService(userRepo, courseRepo, cfg.Pepper, zlog)
	courseService := service.NewCourseService(courseRepo, cfg.MaxImageSizeMB, zlog)
	reviewService := service.NewReviewService(reviewRepo, courseRepo, zlog)
	sectionService := service.NewSectionService(sectionRepo, courseRepo, zlog)
	videoService := service.NewVideoService(videoRepo, sectionRepo, courseRepo, store, zlog)
	attachmentService := service.NewAttachmentService(attachmentRepo, videoRepo, sectionRepo, courseRepo, store, zlog)
	feedbackService := service.NewFeedbackService(feedbackRepo, videoRepo, sectionRepo, courseRepo, zlog)

	authHandler := handler.NewAuthHandler(authService, sessionManager, zlog)
	userHandler := handler.NewUserHandler(userService, sessionManager, zlog)
	courseHandler := handler.NewCourseHandler(courseService, zlog)
	reviewHandler := handler.NewReviewHandler(reviewService, zlog)
	sectionHandler := handler.NewSectionHandler(sectionService, zlog)
	videoHandler := handler.NewVideoHandler(videoService, zlog)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, zlog)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, zlog)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.GET("/health", authHandler.Health)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(sessionManager.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)

		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.Get)
		protected.PATCH("/users/:id", userHandler.Update)
		protected.DELETE("/users/:id", userHandler.Delete)
		protected.GET("/users/:id/courses", userHandler.ListCourses)

		protected.GET("/courses", courseHandler.List)
		protected.POST("/courses", courseHandler.Create)
		protected.GET("/courses/:id", courseHandler.Get)
		protected.PATCH("/courses/:id", courseHandler.Update)
		protected.DELETE("/courses/:id", courseHandler.Delete)
		protected.POST("/courses/:id/enrollment", courseHandler.Enroll)
		protected.DELETE("/courses/:id/enrollment", courseHandler.Unenroll)
		protected.GET("/courses/:id/members", courseHandler.ListMembers)

		protected.GET("/courses/:id/reviews", reviewHandler.ListByCourse)
		protected.POST("/courses/:id/reviews", reviewHandler.Create)
		protected.GET("/reviews/:id", reviewHandler.Get)
		protected.PATCH("/reviews/:id", reviewHandler.Update)
		protected.DELETE("/reviews/:id", reviewHandler.Delete)

		protected.GET("/courses/:id/sections", sectionHandler.ListByCourse)
		protected.POST("/courses/:id/sections", sectionHandler.Create)
		protected.GET("/sections/:id", sectionHandler.Get)
		protected.PATCH("/sections/:id", sectionHandler.Update)
		protected.DELETE("/sections/:id", sectionHandler.Delete)

		protected.GET("/sections/:id/videos", videoHandler.ListBySection)
		protected.POST("/sections/:id/videos", videoHandler.Upload)
		protected.GET("/videos/:id", videoHandler.Get)
		protected.PATCH("/videos/:id", videoHandler.Update)
		protected.DELETE("/videos/:id", videoHandler.Delete)

		protected.GET("/videos/:id/attachments", attachmentHandler.ListByVideo)
		protected.POST("/videos/:id/attachments", attachmentHandler.Upload)
		protected.GET("/attachments/:id", attachmentHandler.Get)
		protected.PATCH("/attachments/:id", attachmentHandler.Update)
		protected.DELETE("/attachments/:id", attachmentHandler.Delete)

		protected.GET("/videos/:id/feedback", feedbackHandler.ListByVideo)
		protected.POST("/videos/:id/feedback", feedbackHandler.Create)
		protected.GET("/feedback/:id", feedbackHandler.Get)
		protected.PATCH("/feedback/:id", feedbackHandler.Update)
		protected.DELETE("/feedback/:id", feedbackHandler.Delete)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server exited", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Review{},
		&model.Section{},
		&model.Video{},
		&model.Attachment{},
		&model.VideoFeedback{},
	)
}
