package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/sells-group/uni-enrich/internal/model"
	"github.com/sells-group/uni-enrich/pkg/completion"
)

// SystemPrompt is sent with every lookup.
const SystemPrompt = `You are a knowledgeable assistant that gathers information about universities.
You have extensive knowledge about universities worldwide and can provide accurate information.
When you are not sure about a piece of information, express that uncertainty by returning null for it.
Format your responses as JSON objects according to the specific format requested in the prompt.`

// Temperature is the sampling temperature used for every lookup.
const Temperature = 0.7

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 60 * time.Second

// Executor sends structured lookups to a completion backend.
type Executor struct {
	backend completion.Backend
	timeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout overrides the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// NewExecutor creates an Executor over the given backend.
func NewExecutor(backend completion.Backend, opts ...ExecutorOption) *Executor {
	e := &Executor{backend: backend, timeout: DefaultTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs one lookup and reports the result as an Outcome. It makes
// exactly one backend call, never retries, and never panics: every failure is
// returned as a failed Outcome.
func Execute[T any](ctx context.Context, e *Executor, d *Descriptor[T], s model.Subject) (out model.Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = model.Failed[T](model.ErrorKindInternal, fmt.Sprintf("panic: %v", r))
		}
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text, err := e.backend.Complete(ctx, SystemPrompt, d.Render(s), completion.Options{
		Temperature: Temperature,
		JSONObject:  true,
	})
	if err != nil {
		return model.Failed[T](model.ErrorKindTransport, err.Error())
	}

	return decode(d, text)
}

// decode parses, validates, and transforms a raw reply.
func decode[T any](d *Descriptor[T], text string) model.Outcome[T] {
	body := cleanJSON(text)
	if body == "" {
		body = "{}"
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		zap.L().Debug("lookup: unparseable reply", zap.String("lookup", d.Name), zap.String("reply", text))
		return model.Failed[T](model.ErrorKindParse, "parse failure: "+err.Error())
	}

	if d.compiled == nil {
		return model.Failed[T](model.ErrorKindInternal, "lookup: schema not compiled for "+d.Name)
	}
	result, err := d.compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return model.Failed[T](model.ErrorKindValidation, "schema validation failure: "+err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return model.Failed[T](model.ErrorKindValidation, "schema validation failure: "+strings.Join(msgs, "; "))
	}

	// Validation guarantees an object carrying the field.
	raw := doc.(map[string]any)[d.Field]
	if raw == nil {
		return model.Succeeded[T](nil)
	}

	v, err := d.Transform(raw)
	if err != nil {
		return model.Failed[T](model.ErrorKindValidation, "schema validation failure: "+err.Error())
	}
	return model.Succeeded(v)
}

// cleanJSON extracts a JSON object from text that may be wrapped in markdown
// code fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
