package api

import (
	"github.com/gin-gonic/gin"

	"planmate/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(handlers *Handlers) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Authenticates with a $AUTH message instead of a header
	api.GET("/analytics/stream", handlers.StreamHandler)

	protected := api.Group("/")
	protected.Use(middleware.JWTAuth(handlers.jwtService))
	{
		tasks := protected.Group("/tasks")
		{
			tasks.GET("", handlers.ListTasksHandler)
			tasks.POST("", handlers.CreateTaskHandler)
			tasks.GET("/:id", handlers.GetTaskHandler)
			tasks.PUT("/:id", handlers.UpdateTaskHandler)
			tasks.DELETE("/:id", handlers.DeleteTaskHandler)
			tasks.POST("/:id/toggle", handlers.ToggleTaskHandler)
		}

		analytics := protected.Group("/analytics")
		{
			analytics.GET("/summary", handlers.SummaryHandler)
			analytics.GET("/weekly", handlers.WeeklyHandler)
			analytics.GET("/priorities", handlers.PrioritiesHandler)
			analytics.GET("/insights", handlers.InsightsHandler)
			analytics.GET("/report.pdf", handlers.ReportPDFHandler)
			analytics.POST("/compute", handlers.ComputeHandler)
		}

		chat := protected.Group("/chat/sessions")
		{
			chat.POST("", handlers.CreateChatSessionHandler)
			chat.GET("/:id", handlers.GetChatSessionHandler)
			chat.POST("/:id/messages", handlers.SendChatMessageHandler)
			chat.POST("/:id/reset", handlers.ResetChatSessionHandler)
			chat.DELETE("/:id", handlers.DeleteChatSessionHandler)
		}

		digest := protected.Group("/digest")
		{
			digest.POST("/opt-in", handlers.OptInDigestHandler)
			digest.POST("/opt-out", handlers.OptOutDigestHandler)
			digest.POST("/send", handlers.SendDigestHandler)
		}
	}

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
