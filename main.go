package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexbook/config"
	"lexbook/cron"
	"lexbook/database"
	appointmentRepo "lexbook/database/repository/appointment"
	directoryRepo "lexbook/database/repository/directory"
	"lexbook/handlers"
	"lexbook/middleware"
	"lexbook/routes"
	"lexbook/services/notification"
	"lexbook/services/scheduling"
	"lexbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockClient()
	utils.FirebaseInit()

	loc := config.CanonicalLocation()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	calendarRepo := appointmentRepo.NewMongoCalendarRepo()
	if err := calendarRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure appointment indexes: %v", err)
	}
	directory := directoryRepo.NewMongoDirectoryRepo()

	// reminder queue client, shared with the worker's redis instance.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()
	reminderScheduler := notification.NewAsynqReminderScheduler(asynqClient, loc)

	// services.
	schedulingService := &scheduling.DefaultSchedulingService{
		Repo:      calendarRepo,
		Directory: directory,
		Locker:    utils.NewRedisLocker(utils.GetLockClient(), 10*time.Second),
		Policy: scheduling.Policy{
			BusinessOpenMin:  config.AppConfig.BusinessOpenMin,
			BusinessCloseMin: config.AppConfig.BusinessCloseMin,
			SlotStepMin:      config.AppConfig.SlotStepMin,
			MinLeadTimeMin:   config.AppConfig.MinLeadTimeMin,
			MaxDurationMin:   config.AppConfig.MaxDurationMin,
			Location:         loc,
		},
		Reminders: reminderScheduler,
	}

	notificationService, err := notification.NewDefaultNotificationService(directory)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}
	go cron.InitReminderWorker(notificationService)

	appointmentHandler := handlers.NewAppointmentHandler(schedulingService, directory, loc, logger)

	// Register routes.
	routes.RegisterRoutes(router, appointmentHandler, directory)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetLockClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
