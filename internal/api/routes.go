package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up the API routes. metricsHandler serves /metrics when non-nil.
func SetupRoutes(handler *Handler, logger *logrus.Logger, rec RequestRecorder, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger(logger, rec))

	// Health check
	router.GET("/health", handler.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		repos := v1.Group("/repositories")
		{
			repos.POST("", handler.CreateRepository)
			repos.GET("/:id", handler.GetRepository)
			repos.GET("/:id/issues", handler.ListIssues)
		}

		v1.POST("/issues", handler.CreateIssue)
		v1.GET("/users/:user/repositories", handler.ListUserRepositories)
	}

	return router
}
