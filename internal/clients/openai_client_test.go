package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/kyokan/config"
	"github.com/spacesedan/kyokan/internal/models"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewOpenAIClient(config.AIConfig{
		APIKey:    "sk-test",
		BaseURL:   srv.URL + "/v1",
		Model:     "gpt-4o-mini",
		MaxTokens: 300,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestOpenAIClient_Observe(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "いいね数: 500\nインプレッション数: 20,000"},
				"finish_reason": "stop"
			}]
		}`))
	})

	text, err := c.Observe(context.Background(), models.VisionRequest{
		SystemPrompt: "system",
		UserPrompt:   "user",
		ImageURI:     "data:image/jpeg;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "いいね数: 500\nインプレッション数: 20,000", text)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 300, got["max_tokens"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", image["url"])
}

func TestOpenAIClient_APIError(t *testing.T) {
	t.Parallel()

	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`))
	})

	_, err := c.Observe(context.Background(), models.VisionRequest{ImageURI: "data:,"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	t.Parallel()

	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	})

	_, err := c.Observe(context.Background(), models.VisionRequest{})
	assert.ErrorContains(t, err, "no choices")
}

func TestOpenAIClient_HonorsDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Observe(ctx, models.VisionRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), err.Error())
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIClient(config.AIConfig{})
	assert.Error(t, err)
}

func TestResultKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "kyokan:result:abc", resultKey("abc"))
}

func TestIsConnectionError(t *testing.T) {
	t.Parallel()

	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("read: i/o timeout")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE")))
}
