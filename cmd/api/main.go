package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unilab/lab-reservation-api/api/swagger"
	"github.com/unilab/lab-reservation-api/internal/handler"
	"github.com/unilab/lab-reservation-api/internal/middleware"
	"github.com/unilab/lab-reservation-api/internal/models"
	"github.com/unilab/lab-reservation-api/internal/notify"
	"github.com/unilab/lab-reservation-api/internal/repository"
	"github.com/unilab/lab-reservation-api/internal/service"
	"github.com/unilab/lab-reservation-api/pkg/cache"
	"github.com/unilab/lab-reservation-api/pkg/config"
	"github.com/unilab/lab-reservation-api/pkg/database"
	"github.com/unilab/lab-reservation-api/pkg/logger"
	corsmiddleware "github.com/unilab/lab-reservation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unilab/lab-reservation-api/pkg/middleware/requestid"
)

// @title Lab Reservation API
// @version 1.0.0
// @description Reservation lifecycle service for academic lab resources
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Catalog.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	labRepo := repository.NewLabRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	labWorkRepo := repository.NewLabWorkRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	metricsSvc := service.NewMetricsService()

	senderFactory := notify.NewSenderFactory(
		notify.NewEmailSender(logr),
		notify.NewSMSSender(logr),
	)
	sender, err := senderFactory.Resolve(cfg.Reservations.NotifyChannel)
	if err != nil {
		logr.Sugar().Fatalw("invalid notification channel", "channel", cfg.Reservations.NotifyChannel, "error", err)
	}
	publisher := notify.NewPublisher(logr)
	publisher.Subscribe(notify.NewNotificationObserver(sender, logr, notify.WithDeliveryRecorder(metricsSvc)))

	slots := service.NewReservationValidator(
		service.NewTimeSlotStrategy(nil),
		service.NewDurationStrategy(cfg.Reservations.MaxDuration),
	)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, logr)

	labSvc := service.NewLabService(labRepo, cacheRepo, cfg.Catalog.CacheTTL, logr, service.WithLabCacheMetrics(metricsSvc))
	equipmentSvc := service.NewEquipmentService(equipmentRepo, cacheRepo, cfg.Catalog.CacheTTL, logr, service.WithEquipmentCacheMetrics(metricsSvc))
	labWorkSvc := service.NewLabWorkService(labWorkRepo, equipmentRepo, logr)
	reservationSvc := service.NewReservationService(
		reservationRepo,
		labRepo,
		labWorkRepo,
		equipmentRepo,
		publisher,
		slots,
		logr,
		service.WithLifecycleRecorder(metricsSvc),
	)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	labHandler := handler.NewLabHandler(labSvc)
	equipmentHandler := handler.NewEquipmentHandler(equipmentSvc)
	labWorkHandler := handler.NewLabWorkHandler(labWorkSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	users := protected.Group("/users")
	users.GET("/me", userHandler.Me)
	users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)

	labs := protected.Group("/labs")
	labs.GET("", labHandler.List)
	labs.GET("/:id", labHandler.Get)
	labs.POST("", middleware.RequireRoles(models.RoleAdmin), labHandler.Create)
	labs.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), labHandler.Update)
	labs.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), labHandler.Delete)

	equipment := protected.Group("/equipment")
	equipment.GET("", equipmentHandler.List)
	equipment.GET("/:id", equipmentHandler.Get)
	equipment.POST("", middleware.RequireRoles(models.RoleAdmin), equipmentHandler.Create)
	equipment.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), equipmentHandler.Update)
	equipment.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), equipmentHandler.Delete)

	labWorks := protected.Group("/labworks")
	labWorks.GET("", labWorkHandler.List)
	labWorks.GET("/:id", labWorkHandler.Get)
	labWorks.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleResearcher), labWorkHandler.Create)
	labWorks.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleResearcher), labWorkHandler.Update)
	labWorks.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleResearcher), labWorkHandler.Delete)

	reservations := protected.Group("/reservations")
	reservations.POST("", reservationHandler.Create)
	reservations.GET("/me", reservationHandler.Mine)
	reservations.GET("", middleware.RequireRoles(models.RoleAdmin), reservationHandler.List)
	reservations.GET("/pending", middleware.RequireRoles(models.RoleAdmin), reservationHandler.Pending)
	reservations.GET("/export", middleware.RequireRoles(models.RoleAdmin), reservationHandler.Export)
	reservations.POST("/:id/approve", middleware.RequireRoles(models.RoleAdmin), reservationHandler.Approve)
	reservations.POST("/:id/reject", middleware.RequireRoles(models.RoleAdmin), reservationHandler.Reject)
	reservations.PATCH("/:id/status", reservationHandler.UpdateStatus)
	reservations.DELETE("/:id", reservationHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
