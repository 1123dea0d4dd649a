package router

import (
	"porthound/api"
	"porthound/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		// Auth routes (no auth required)
		authHandler := api.NewAuthHandler()
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := apiGroup.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.PUT("/auth/password", authHandler.ChangePassword)

			// Synchronous scans and stored reports
			scanHandler := api.NewScanHandler()
			scanGroup := protected.Group("/scan")
			{
				scanGroup.POST("/run", scanHandler.Run)
				scanGroup.GET("/reports", scanHandler.ListReports)
				scanGroup.GET("/reports/:scan_id", scanHandler.GetReport)
			}

			// Queued scan tasks
			taskHandler := api.NewTaskHandler()
			taskGroup := protected.Group("/tasks")
			{
				taskGroup.POST("", taskHandler.Create)
				taskGroup.GET("", taskHandler.List)
				taskGroup.GET("/:id", taskHandler.Get)
				taskGroup.POST("/:id/cancel", taskHandler.Cancel)
				taskGroup.DELETE("/:id", taskHandler.Delete)
				taskGroup.GET("/:id/report", taskHandler.GetReport)
			}
		}
	}

	return r
}
