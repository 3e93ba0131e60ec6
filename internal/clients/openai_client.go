package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/kyokan/config"
	"github.com/spacesedan/kyokan/internal/models"
)

// OpenAIClient asks a vision-capable chat model to read a screenshot.
type OpenAIClient struct {
	Client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIClient(cfg config.AIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("[OpenAIClient] missing OPENAI_API_KEY")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAIClient{
		Client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Observe sends the system instruction, the user instruction and the image in
// one chat completion and returns the first choice's text.
func (c *OpenAIClient) Observe(ctx context.Context, req models.VisionRequest) (string, error) {
	start := time.Now()
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  buildVisionMessages(req),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			slog.Warn("[OpenAIClient] API error",
				slog.Int("status", apiErr.HTTPStatusCode),
				slog.String("error", apiErr.Message))
		}
		return "", fmt.Errorf("[OpenAIClient] chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("[OpenAIClient] response has no choices")
	}

	slog.Info("[OpenAIClient] OpenAI Response Finish Reason",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Duration("elapsed", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}

func buildVisionMessages(req models.VisionRequest) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: req.UserPrompt,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    req.ImageURI,
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		},
	}
}
