package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-api/api/swagger"
	"github.com/noah-isme/lms-api/internal/handler"
	internalmiddleware "github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/repository"
	"github.com/noah-isme/lms-api/internal/scheduler"
	"github.com/noah-isme/lms-api/internal/service"
	"github.com/noah-isme/lms-api/pkg/cache"
	"github.com/noah-isme/lms-api/pkg/config"
	"github.com/noah-isme/lms-api/pkg/database"
	"github.com/noah-isme/lms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-api/pkg/middleware/requestid"
	"github.com/noah-isme/lms-api/pkg/razorpay"
	"github.com/noah-isme/lms-api/pkg/signature"
)

// @title LMS API
// @version 1.0.0
// @description Course checkout, enrollment reconciliation, reminders and attendance.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Catalog.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	hub := service.NewNotificationHub(metricsSvc, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(profileRepo, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})

	provider := razorpay.NewClient(razorpay.Config{
		KeyID:     cfg.Payments.KeyID,
		KeySecret: cfg.Payments.KeySecret,
		BaseURL:   cfg.Payments.APIBaseURL,
		Timeout:   cfg.Payments.Timeout,
	})
	orderSvc := service.NewOrderService(provider, enrollmentRepo, validate, metricsSvc, logr)
	webhookSvc := service.NewWebhookService(
		signature.NewVerifier(cfg.Payments.WebhookSecret),
		enrollmentRepo, paymentRepo, notificationRepo, hub, metricsSvc, logr,
	)
	reminderSvc := service.NewReminderService(lectureRepo, enrollmentRepo, notificationRepo, hub, metricsSvc, logr, service.ReminderConfig{
		Secret:   cfg.Reminders.CronSecret,
		LeadTime: cfg.Reminders.LeadTime,
		Window:   cfg.Reminders.Window,
	})
	notificationSvc := service.NewNotificationService(notificationRepo, hub, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, lectureRepo, validate, logr)
	catalogSvc := service.NewCatalogService(courseRepo, cacheSvc, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, logr)

	paymentHandler := handler.NewPaymentHandler(orderSvc, webhookSvc, handler.PaymentHandlerConfig{
		SignatureHeader: cfg.Payments.SignatureHeader,
		MaxWebhookBytes: cfg.Payments.MaxWebhookBytes,
	})
	reminderHandler := handler.NewReminderHandler(reminderSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Payments.SignatureHeader))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Provider and scheduler callers use fixed paths outside the versioned prefix.
	payments := r.Group("/api/payments/razorpay")
	payments.POST("/order", internalmiddleware.OptionalJWT(authSvc), paymentHandler.CreateOrder)
	payments.POST("/webhook", paymentHandler.Webhook)
	r.GET("/api/cron/notify-upcoming", reminderHandler.NotifyUpcoming)

	api := r.Group(cfg.APIPrefix)
	api.GET("/courses", catalogHandler.List)
	api.GET("/courses/:slug", catalogHandler.Get)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.GET("/me/enrollments", enrollmentHandler.ListMine)
	secured.GET("/me/attendance", attendanceHandler.MyHistory)
	secured.GET("/notifications", notificationHandler.List)
	secured.POST("/notifications/read", notificationHandler.MarkRead)
	secured.GET("/notifications/stream", notificationHandler.Stream)

	admin := secured.Group("/admin")
	admin.Use(internalmiddleware.RequireAdmin(authSvc))
	admin.GET("/lectures/:id/attendance", attendanceHandler.Roster)
	admin.PUT("/lectures/:id/attendance", attendanceHandler.Mark)

	if cfg.Reminders.SchedulerEnabled {
		sched, err := scheduler.NewReminderScheduler(reminderSvc, scheduler.Config{
			Schedule:   cfg.Reminders.Schedule,
			MaxRetries: cfg.Reminders.WorkerRetries,
			RetryDelay: cfg.Reminders.RetryDelay,
		}, logr)
		if err != nil {
			logr.Fatal("failed to build reminder scheduler", zap.Error(err))
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Open notification streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
