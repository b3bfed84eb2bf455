package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/windward-labs/kiteschool-api/internal/handler"
	internalmiddleware "github.com/windward-labs/kiteschool-api/internal/middleware"
	"github.com/windward-labs/kiteschool-api/internal/repository"
	"github.com/windward-labs/kiteschool-api/internal/service"
	"github.com/windward-labs/kiteschool-api/pkg/cache"
	"github.com/windward-labs/kiteschool-api/pkg/config"
	"github.com/windward-labs/kiteschool-api/pkg/database"
	"github.com/windward-labs/kiteschool-api/pkg/logger"
	corsmiddleware "github.com/windward-labs/kiteschool-api/pkg/middleware/cors"
	reqidmiddleware "github.com/windward-labs/kiteschool-api/pkg/middleware/requestid"
)

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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduling.SnapshotCacheTTL, logr, redisClient != nil)

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, cacheSvc, validate, logr)
	bookingSvc := service.NewBookingService(bookingRepo, studentRepo, validate, logr)
	schedulingSvc := service.NewSchedulingService(teacherRepo, eventRepo, db, cacheSvc, metricsSvc, validate, logr, service.SchedulingConfig{
		SessionTTL:      cfg.Scheduling.SessionTTL,
		SnapshotTTL:     cfg.Scheduling.SnapshotCacheTTL,
		DefaultSingle:   cfg.Scheduling.DefaultSingle,
		DefaultMultiple: cfg.Scheduling.DefaultMultiple,
		DefaultLocation: cfg.Scheduling.DefaultLocation,
	})

	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	schedulingHandler := handler.NewSchedulingHandler(schedulingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		cacheState := "ok"
		if !cacheRepo.Healthy(c.Request.Context()) {
			cacheState = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "cache": cacheState})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/status", metricsHandler.Status)

		teachers := api.Group("/teachers")
		{
			teachers.GET("", teacherHandler.List)
			teachers.POST("", teacherHandler.Create)
			teachers.GET("/:id", teacherHandler.Get)
			teachers.PUT("/:id", teacherHandler.Update)
			teachers.DELETE("/:id", teacherHandler.Deactivate)
		}

		students := api.Group("/students")
		{
			students.GET("", studentHandler.List)
			students.POST("", studentHandler.Create)
			students.GET("/:id", studentHandler.Get)
			students.PUT("/:id", studentHandler.Update)
			students.DELETE("/:id", studentHandler.Deactivate)
		}

		events := api.Group("/events")
		{
			events.GET("", eventHandler.List)
			events.POST("", eventHandler.Create)
			events.GET("/:id", eventHandler.Get)
			events.PATCH("/:id/status", eventHandler.UpdateStatus)
			events.DELETE("/:id", eventHandler.Delete)
		}

		scheduling := api.Group("/scheduling")
		{
			scheduling.GET("/board", schedulingHandler.DayBoard)
			scheduling.POST("/sessions", schedulingHandler.StartSession)
			scheduling.GET("/sessions/:id", schedulingHandler.GetSession)
			scheduling.DELETE("/sessions/:id", schedulingHandler.CloseSession)
			scheduling.POST("/sessions/:id/requests", schedulingHandler.AddRequest)
			scheduling.DELETE("/sessions/:id/requests/:requestId", schedulingHandler.RemoveRequest)
			scheduling.PATCH("/sessions/:id/settings", schedulingHandler.UpdateSettings)
			scheduling.POST("/sessions/:id/calculate", schedulingHandler.Calculate)
			scheduling.POST("/sessions/:id/confirm", schedulingHandler.Confirm)
			scheduling.POST("/sessions/:id/pushback", schedulingHandler.OpenPushback)
			scheduling.POST("/sessions/:id/pushback/preview", schedulingHandler.PreviewPushback)
			scheduling.POST("/sessions/:id/pushback/confirm", schedulingHandler.ConfirmPushback)
			scheduling.DELETE("/sessions/:id/pushback", schedulingHandler.ClosePushback)
		}

		if cfg.Bookings.Enabled {
			bookings := api.Group("/bookings")
			{
				bookings.GET("", bookingHandler.List)
				bookings.POST("", bookingHandler.Create)
				bookings.GET("/:id", bookingHandler.Get)
				bookings.PATCH("/:id/status", bookingHandler.UpdateStatus)
			}
			packages := api.Group("/packages")
			{
				packages.GET("", bookingHandler.ListPackages)
				packages.POST("", bookingHandler.CreatePackage)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
