package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"hotel-ops/config"
	"hotel-ops/jobs"
	"hotel-ops/realtime"
	"hotel-ops/routes"
	"hotel-ops/services"
	"hotel-ops/utils"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDatabase(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Database connect failed")
	}
	logger.WithField("driver", cfg.Database.Driver).Info("Database connection established and migrations applied")
	if !cfg.IsProduction() {
		config.SeedDatabase(db, logger)
	}

	rdb, err := config.ConnectRedis(context.Background(), cfg.Redis)
	if err != nil {
		// caching is optional
		logger.WithError(err).Warn("Redis unavailable, caching disabled")
	}
	cache := services.NewCache(rdb, cfg.Redis.TTL, logger)

	hub := realtime.NewHub(logger)
	mailer := utils.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.FromName, logger)

	app := services.NewContainer(services.Options{
		DB:        db,
		Logger:    logger,
		Cache:     cache,
		Pusher:    hub,
		Mailer:    mailer,
		UploadDir: cfg.Server.UploadDir,
	})

	scheduler := cron.New()
	if err := jobs.InitCronJobs(scheduler, cfg.Jobs.BlockageSweepSchedule, app.Blockages, logger); err != nil {
		logger.WithError(err).Fatal("Failed to schedule cron jobs")
	}

	router := routes.SetupRouter(app, cfg, hub, logger)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received, shutting down server...")

	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := hub.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close websocket hub")
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("Server stopped gracefully")
}
