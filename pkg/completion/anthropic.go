package completion

import (
	"context"
	"errors"

	"github.com/sells-group/uni-enrich/pkg/anthropic"
)

// jsonObjectDirective is appended to the system prompt because the Messages
// API has no response-format switch.
const jsonObjectDirective = "Respond with a single JSON object and nothing else."

// AnthropicBackend implements Backend on top of the Messages API.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropic wraps an anthropic.Client. An empty model uses anthropic.DefaultModel.
func NewAnthropic(client anthropic.Client, model string) *AnthropicBackend {
	if model == "" {
		model = anthropic.DefaultModel
	}
	return &AnthropicBackend{client: client, model: model}
}

// Complete implements Backend.
func (b *AnthropicBackend) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error) {
	system := systemPrompt
	if opts.JSONObject {
		system += "\n" + jsonObjectDirective
	}
	temp := opts.Temperature

	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       b.model,
		MaxTokens:   int64(opts.MaxTokens),
		System:      []anthropic.SystemBlock{{Text: system}},
		Messages:    []anthropic.Message{{Role: "user", Content: userPrompt}},
		Temperature: &temp,
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			return "", newBackendError("anthropic", apiErr.StatusCode, err)
		}
		return "", newBackendError("anthropic", 0, err)
	}

	resp.Usage.LogCost(b.model, "completion")
	return resp.Text(), nil
}
