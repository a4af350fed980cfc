package completion

import (
	"context"
	"fmt"
	"strings"
)

// Compile-time interface checks.
var (
	_ Backend = (*StubBackend)(nil)
	_ Backend = (*OpenAIBackend)(nil)
	_ Backend = (*AnthropicBackend)(nil)
)

// StubBackend answers lookup prompts with canned JSON so the CLI can run
// end-to-end without API keys.
type StubBackend struct{}

// Complete implements Backend by recognizing which answer shape the prompt asks for.
func (s *StubBackend) Complete(_ context.Context, _, userPrompt string, _ Options) (string, error) {
	switch {
	case strings.Contains(userPrompt, `{"hasLanguageCentre"`):
		return `{"hasLanguageCentre": true}`, nil
	case strings.Contains(userPrompt, `{"population"`):
		return `{"population": 25000}`, nil
	case strings.Contains(userPrompt, `{"type"`):
		return `{"type": "public"}`, nil
	case strings.Contains(userPrompt, `{"url"`):
		slug := strings.SplitN(promptDomain(userPrompt), ".", 2)[0]
		if slug == "" {
			return `{"url": null}`, nil
		}
		return fmt.Sprintf(`{"url": "https://www.linkedin.com/school/%s/"}`, slug), nil
	default:
		return `{}`, nil
	}
}

// promptDomain pulls the value of the "Domain:" line out of a rendered prompt.
func promptDomain(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "Domain:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
