package api

import "github.com/gin-gonic/gin"

// SetupRoutes registers every endpoint on router.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)
	router.GET("/ready", handler.Ready)

	router.POST("/analyze", handler.Analyze)

	results := router.Group("/results")
	{
		results.GET("", handler.ListResults)
		results.GET("/:id", handler.GetResult)
	}
}
