package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/kyokan/internal/analysis"
	"github.com/spacesedan/kyokan/internal/imaging"
	"github.com/spacesedan/kyokan/internal/storage"
)

// RespondError writes {"error": msg} and stops the handler chain.
func RespondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondServiceError maps pipeline and store errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var (
		tooLarge *analysis.UploadTooLargeError
		aiErr    *analysis.AIServiceError
	)

	switch {
	case errors.As(err, &tooLarge):
		RespondError(c, http.StatusRequestEntityTooLarge, tooLarge.Error())
	case errors.Is(err, imaging.ErrUnsupportedImage):
		RespondError(c, http.StatusBadRequest, "file is not a supported image")
	case errors.As(err, &aiErr):
		if aiErr.Timeout() {
			RespondError(c, http.StatusGatewayTimeout, "ai service timed out")
			return
		}
		if errors.Is(err, context.Canceled) {
			slog.Info("[API] client went away during model call", slog.String("path", c.Request.URL.Path))
			c.AbortWithStatus(http.StatusRequestTimeout)
			return
		}
		RespondError(c, http.StatusBadGateway, "ai service failure")
	case errors.Is(err, analysis.ErrPersistenceDisabled):
		RespondError(c, http.StatusNotFound, "result persistence is disabled")
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidID):
		RespondError(c, http.StatusNotFound, "result not found")
	default:
		slog.Error("[API] unexpected error",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
		RespondError(c, http.StatusInternalServerError, "internal server error")
	}
}
