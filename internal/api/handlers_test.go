package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/kyokan/internal/analysis"
	"github.com/spacesedan/kyokan/internal/api"
	"github.com/spacesedan/kyokan/internal/imaging"
	"github.com/spacesedan/kyokan/internal/models"
	"github.com/spacesedan/kyokan/internal/storage"
)

type mockAnalyzer struct {
	analyzeFunc func(body []byte, declared models.Category) (*models.AnalysisResult, error)
	results     []string
	resultsErr  error
	stored      map[string]models.AnalysisResult

	calls int
}

func (m *mockAnalyzer) Analyze(_ context.Context, image io.Reader, declared models.Category) (*models.AnalysisResult, error) {
	m.calls++
	body, err := io.ReadAll(image)
	if err != nil {
		return nil, err
	}
	return m.analyzeFunc(body, declared)
}

func (m *mockAnalyzer) Results(_ context.Context) ([]string, error) {
	return m.results, m.resultsErr
}

func (m *mockAnalyzer) Result(_ context.Context, id string) (*models.AnalysisResult, error) {
	if m.resultsErr != nil {
		return nil, m.resultsErr
	}
	r, ok := m.stored[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func setupTestRouter(t *testing.T, analyzer api.Analyzer, limit int64) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	return api.NewRouter(api.NewHandler(analyzer, limit), []string{"*"})
}

func uploadRequest(t *testing.T, file []byte, category string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if file != nil {
		part, err := w.CreateFormFile("file", "post.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	if category != "" {
		require.NoError(t, w.WriteField("category", category))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRootAndHealth(t *testing.T) {
	router := setupTestRouter(t, &mockAnalyzer{}, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is running", decodeBody(t, rec)["message"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var healthy atomic.Bool
	router := api.NewRouter(api.NewHandler(&mockAnalyzer{}, 1024).WithStoreHealth(&healthy), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	healthy.Store(true)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestReady_WithoutStore(t *testing.T) {
	router := setupTestRouter(t, &mockAnalyzer{}, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyze_Success(t *testing.T) {
	var gotBody []byte
	var gotCategory models.Category
	analyzer := &mockAnalyzer{
		analyzeFunc: func(body []byte, declared models.Category) (*models.AnalysisResult, error) {
			gotBody, gotCategory = body, declared
			return &models.AnalysisResult{
				Likes:       500,
				Impressions: 20000,
				KyokanRate:  2.5,
				Tier:        "gathered some resonance",
				Category:    declared,
			}, nil
		},
	}
	router := setupTestRouter(t, analyzer, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, []byte("fake-png"), "政治"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("fake-png"), gotBody)
	assert.Equal(t, models.CategoryPolitical, gotCategory)

	body := decodeBody(t, rec)
	assert.Equal(t, 2.5, body["kyokan_rate"])
	assert.Equal(t, "gathered some resonance", body["tier"])
	assert.Equal(t, "political", body["category"])
	assert.NotContains(t, body, "result_id")
}

func TestAnalyze_MissingFile(t *testing.T) {
	analyzer := &mockAnalyzer{}
	router := setupTestRouter(t, analyzer, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, nil, "daily-life"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file is required", decodeBody(t, rec)["error"])
	assert.Zero(t, analyzer.calls)
}

func TestAnalyze_TooLarge(t *testing.T) {
	analyzer := &mockAnalyzer{}
	router := setupTestRouter(t, analyzer, 16)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, bytes.Repeat([]byte("x"), 17), ""))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "file too large: limit is 16 bytes", decodeBody(t, rec)["error"])
	assert.Zero(t, analyzer.calls)
}

func TestAnalyze_AtLimit(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyzeFunc: func([]byte, models.Category) (*models.AnalysisResult, error) {
			return &models.AnalysisResult{}, nil
		},
	}
	router := setupTestRouter(t, analyzer, 16)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, bytes.Repeat([]byte("x"), 16), ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, analyzer.calls)
}

func TestAnalyze_UnknownCategory(t *testing.T) {
	analyzer := &mockAnalyzer{}
	router := setupTestRouter(t, analyzer, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, []byte("png"), "gardening"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, analyzer.calls)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unsupported image", fmt.Errorf("prepare image: %w", imaging.ErrUnsupportedImage), http.StatusBadRequest},
		{"ai timeout", &analysis.AIServiceError{Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"ai failure", &analysis.AIServiceError{Err: analysis.ErrEmptyResponse}, http.StatusBadGateway},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &mockAnalyzer{
				analyzeFunc: func([]byte, models.Category) (*models.AnalysisResult, error) {
					return nil, tt.err
				},
			}
			router := setupTestRouter(t, analyzer, 1024)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, uploadRequest(t, []byte("png"), ""))

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

func TestResults(t *testing.T) {
	stored := models.AnalysisResult{ResultID: "abc", KyokanRate: 0.75}
	analyzer := &mockAnalyzer{
		results: []string{"abc"},
		stored:  map[string]models.AnalysisResult{"abc": stored},
	}
	router := setupTestRouter(t, analyzer, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"abc"}, decodeBody(t, rec)["results"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.75, decodeBody(t, rec)["kyokan_rate"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResults_EmptyListIsArray(t *testing.T) {
	router := setupTestRouter(t, &mockAnalyzer{}, 1024)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestResults_PersistenceDisabled(t *testing.T) {
	router := setupTestRouter(t, &mockAnalyzer{resultsErr: analysis.ErrPersistenceDisabled}, 1024)

	for _, path := range []string{"/results", "/results/abc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestRouter(t, &mockAnalyzer{}, 1024)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://frontend.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://frontend.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
