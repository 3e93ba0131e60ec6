package api

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAgeHours = 12

func NewRouter(handler *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(cors.New(corsConfig(allowedOrigins)))
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	SetupRoutes(router, handler)
	return router
}

// corsConfig echoes the caller's origin for "*" so credentialed requests work.
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeHours * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		slog.Info("[API] HTTP request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status_code", c.Writer.Status()),
			slog.String("client_ip", c.ClientIP()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
