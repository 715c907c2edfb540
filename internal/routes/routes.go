package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/youpolonia/cms-sub038/internal/handler"
	"github.com/youpolonia/cms-sub038/internal/middleware"
	"github.com/youpolonia/cms-sub038/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	scheduleHandler *handler.ScheduleHandler,
	versionHandler *handler.VersionHandler,
	batchHandler *handler.BatchHandler,
	sweepHandler *handler.SweepHandler,
	notificationHandler *handler.NotificationHandler,
	auditHandler *handler.AuditHandler,
	jwtManager *jwt.Manager,
	perms *middleware.LevelPermissionChecker,
) {
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Tenant())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1", middleware.JWTAuth(jwtManager, perms))

	// Scheduled events
	schedules := api.Group("/schedules")
	{
		schedules.POST("", scheduleHandler.Create)
		schedules.POST("/resolve", scheduleHandler.Resolve)
		schedules.GET("/:id", scheduleHandler.Get)
		schedules.PATCH("/:id/status", scheduleHandler.UpdateStatus)
		schedules.DELETE("/:id", scheduleHandler.Cancel)
	}

	// Content versions
	contents := api.Group("/contents")
	{
		contents.POST("/:contentID/versions", versionHandler.Create)
		contents.GET("/:contentID/versions", versionHandler.List)
		contents.GET("/:contentID/schedules", scheduleHandler.ListByContent)
	}
	api.GET("/versions/:id", versionHandler.Get)

	// Batch scheduling
	batches := api.Group("/batches")
	{
		batches.POST("/schedule", batchHandler.Schedule)
		batches.POST("/conflicts", batchHandler.CheckConflicts)
		batches.POST("/content-status", batchHandler.ContentStatus)
		batches.GET("/:batchID/progress", batchHandler.Progress)
		batches.GET("/:batchID/items", batchHandler.Items)
	}

	// Operations
	api.POST("/sweep", sweepHandler.Trigger)
	api.GET("/audit-logs", auditHandler.List)

	// Notifications
	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.GetList)
		notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
	}
}
