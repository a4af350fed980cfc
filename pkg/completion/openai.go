package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultOpenAIModel matches the model the lookups were tuned against.
const DefaultOpenAIModel = "gpt-4o-mini"

// DefaultOpenAITimeout bounds an HTTP request when no timeout is configured.
const DefaultOpenAITimeout = 2 * time.Minute

// OpenAIConfig configures the OpenAI-compatible backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, e.g. "https://api.openai.com/v1"
	Model   string
	Timeout time.Duration
}

// OpenAIBackend implements Backend with chat completions.
type OpenAIBackend struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an OpenAI chat-completions backend.
func NewOpenAI(cfg OpenAIConfig) *OpenAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultOpenAITimeout
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIBackend{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: timeout,
	}
}

// Model returns the configured model name.
func (b *OpenAIBackend) Model() string { return b.model }

// Timeout returns the HTTP client timeout.
func (b *OpenAIBackend) Timeout() time.Duration { return b.timeout }

// Complete implements Backend.
func (b *OpenAIBackend) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONObject {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &BackendError{Provider: "openai", Message: "no choices in response"}
	}

	zap.L().Debug("openai: completion",
		zap.String("model", b.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError extracts the HTTP status from go-openai's error types.
func classifyOpenAIError(err error) *BackendError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return newBackendError("openai", apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newBackendError("openai", reqErr.HTTPStatusCode, err)
	}
	return newBackendError("openai", 0, err)
}
