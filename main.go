package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gallerylog/config"
	"gallerylog/database"
	"gallerylog/handlers"
	"gallerylog/service"
	"gallerylog/version"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	config.ParseFlags()

	logger, closeLogs, err := setupLogging(config.Settings.LogFilePath, config.Settings.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogs()

	logger.Info("starting up", zap.String("version", version.GetFullVersion()))

	if err := database.InitDB(); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	svcs := service.InitServices(database.DB, logger)

	// Periodic retention sweep: enforce the cap even for records that
	// arrive outside the capture pipeline.
	scheduler := cron.New()
	if interval := config.Settings.TrimSweepIntervalMinutes; interval > 0 {
		spec := fmt.Sprintf("@every %dm", interval)
		if _, err := scheduler.AddFunc(spec, func() {
			if _, err := svcs.Retention.Trim(svcs.Settings.MaxErrorItems()); err != nil {
				logger.Warn("retention sweep failed", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("failed to schedule retention sweep", zap.Error(err))
		}
		scheduler.Start()
	}

	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Route gin logs into the shared log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		// Error log routes
		api.GET("/errors", handlers.ListErrors)
		api.POST("/errors", handlers.RecordError)
		api.GET("/errors/:id", handlers.GetError)
		api.GET("/errors/:id/report", handlers.GetErrorReport)
		api.DELETE("/errors/:id", handlers.DeleteError)
		api.DELETE("/errors", handlers.ClearErrors)
		api.POST("/errors/trim", handlers.TrimErrors)

		// Settings routes
		api.GET("/settings/galleries/:galleryId", handlers.GetGallerySettings)
		api.PUT("/settings/galleries/:galleryId", handlers.UpdateGallerySettings)
		api.PUT("/settings/retention-cap", handlers.UpdateRetentionCap)

		// Health route
		api.GET("/health", handlers.HealthCheck)
	}

	addr := fmt.Sprintf("0.0.0.0:%d", config.Settings.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	if err := database.CloseDB(); err != nil {
		logger.Warn("error closing database", zap.Error(err))
	}

	logger.Info("server exited")
}
