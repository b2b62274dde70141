// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/DDP16/se-jobs-pipeline/internal/config"
	"github.com/DDP16/se-jobs-pipeline/internal/database"
	"github.com/DDP16/se-jobs-pipeline/internal/notify"
	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
	"github.com/DDP16/se-jobs-pipeline/internal/router"
	"github.com/DDP16/se-jobs-pipeline/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	configureLogging(cfg)

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Select the stage store backend
	var stageStore pipeline.ApplicationStore
	switch cfg.Store.Backend {
	case "remote":
		stageStore, err = store.NewRemoteStore(store.RemoteConfig{
			BaseURL: cfg.Store.RemoteURL,
			Timeout: time.Duration(cfg.Store.Timeout) * time.Second,
		})
		if err != nil {
			logrus.Fatal("Failed to initialize remote store: ", err)
		}
		logrus.WithField("url", cfg.Store.RemoteURL).Info("Using remote application store")
	default:
		stageStore = store.NewGormStore(db)
	}

	// Select the notifier
	var notifier notify.Notifier
	if cfg.Redis.Enabled {
		redisNotifier := notify.NewRedisNotifier(cfg.Redis)
		defer redisNotifier.Close()
		notifier = redisNotifier
		logrus.WithField("channel", notify.Channel).Info("Publishing stage changes to redis")
	} else {
		notifier = notify.NewLogNotifier()
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(db, stageStore, notifier, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}

func configureLogging(cfg *config.Config) {
	if cfg.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
