// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DDP16/se-jobs-pipeline/internal/config"
	"github.com/DDP16/se-jobs-pipeline/internal/handlers"
	"github.com/DDP16/se-jobs-pipeline/internal/middleware"
	"github.com/DDP16/se-jobs-pipeline/internal/notify"
	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
	"github.com/DDP16/se-jobs-pipeline/internal/services"
)

func Initialize(db *gorm.DB, stageStore pipeline.ApplicationStore, notifier notify.Notifier, cfg *config.Config) *gin.Engine {
	// Initialize services
	applicationService := services.NewApplicationService(db, stageStore, notifier)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		applications := v1.Group("/applications")
		{
			applications.POST("", applicationHandler.CreateApplication)
			applications.GET("", applicationHandler.ListApplications)
			applications.GET("/:id", applicationHandler.GetApplication)
			applications.GET("/:id/transitions", applicationHandler.GetAllowedTransitions)
			applications.POST("/:id/transitions", middleware.TransitionRateLimit(), applicationHandler.ChangeStage)
			applications.GET("/:id/history", applicationHandler.GetHistory)
		}
	}

	return r
}
