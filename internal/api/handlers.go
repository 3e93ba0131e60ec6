package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/kyokan/internal/analysis"
	"github.com/spacesedan/kyokan/internal/extraction"
	"github.com/spacesedan/kyokan/internal/models"
)

// room for multipart boundaries and the category field on top of the file cap
const multipartOverhead = 64 << 10

// Analyzer is the part of analysis.Service the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, image io.Reader, declared models.Category) (*models.AnalysisResult, error)
	Results(ctx context.Context) ([]string, error)
	Result(ctx context.Context, id string) (*models.AnalysisResult, error)
}

type Handler struct {
	analyzer       Analyzer
	maxUploadBytes int64
	storeHealthy   *atomic.Bool
}

func NewHandler(analyzer Analyzer, maxUploadBytes int64) *Handler {
	return &Handler{analyzer: analyzer, maxUploadBytes: maxUploadBytes}
}

// WithStoreHealth makes Ready report the given result store health flag.
func (h *Handler) WithStoreHealth(healthy *atomic.Bool) *Handler {
	h.storeHealthy = healthy
	return h
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is running"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready fails while the configured result store is unreachable.
func (h *Handler) Ready(c *gin.Context) {
	if h.storeHealthy != nil && !h.storeHealthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Analyze accepts a multipart upload in field "file" and an optional
// "category" form field.
func (h *Handler) Analyze(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondServiceError(c, &analysis.UploadTooLargeError{Limit: h.maxUploadBytes})
			return
		}
		slog.Warn("[AnalyzeHandler] missing upload", slog.String("error", err.Error()))
		RespondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		slog.Warn("[AnalyzeHandler] upload rejected",
			slog.String("filename", header.Filename),
			slog.Int64("size", header.Size),
			slog.Int64("limit", h.maxUploadBytes))
		respondServiceError(c, &analysis.UploadTooLargeError{Limit: h.maxUploadBytes})
		return
	}

	var category models.Category
	if raw := c.PostForm("category"); raw != "" {
		parsed, ok := extraction.ParseCategory(raw)
		if !ok {
			RespondError(c, http.StatusBadRequest, fmt.Sprintf("unknown category %q", raw))
			return
		}
		category = parsed
	}

	file, err := header.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unable to read upload")
		return
	}
	defer file.Close()

	slog.Info("[AnalyzeHandler] analyzing upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("category", string(category)))

	result, err := h.analyzer.Analyze(c.Request.Context(), file, category)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListResults(c *gin.Context) {
	ids, err := h.analyzer.Results(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"results": ids})
}

func (h *Handler) GetResult(c *gin.Context) {
	result, err := h.analyzer.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
