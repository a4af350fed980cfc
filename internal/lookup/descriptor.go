// Package lookup runs structured LLM lookups: render a prompt, ask the
// completion backend, validate the JSON reply against a schema, and convert it
// to a typed value.
package lookup

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sells-group/uni-enrich/internal/model"
)

// Prompt placeholders substituted at render time.
const (
	placeholderName   = "{university.name}"
	placeholderDomain = "{university.domain}"
)

// Descriptor is the static configuration of one lookup: what to ask, what
// shape the answer must have, and how to turn it into a field value.
type Descriptor[T any] struct {
	// Name identifies the lookup in logs.
	Name string
	// Field is the single key the reply object must carry.
	Field string
	// Prompt is the user prompt template.
	Prompt string
	// Schema is a JSON Schema document the reply object must satisfy.
	Schema string
	// Transform converts the validated, non-null field value into T. A nil
	// result means the answer carries no usable value and is treated as unknown.
	Transform func(v any) (*T, error)

	compiled *gojsonschema.Schema
}

// Render substitutes the subject's name and domain into the prompt.
func (d *Descriptor[T]) Render(s model.Subject) string {
	out := strings.ReplaceAll(d.Prompt, placeholderName, s.Name)
	return strings.ReplaceAll(out, placeholderDomain, s.Domain)
}

// Compile parses the descriptor's schema. Descriptors are compiled once at
// package init; a bad schema is a programming error.
func (d *Descriptor[T]) Compile() error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(d.Schema))
	if err != nil {
		return eris.Wrapf(err, "lookup: compile schema for %s", d.Name)
	}
	d.compiled = schema
	return nil
}

// mustCompile compiles d and panics on error.
func mustCompile[T any](d *Descriptor[T]) *Descriptor[T] {
	if err := d.Compile(); err != nil {
		panic(err)
	}
	return d
}

// nullableSchema builds an object schema requiring exactly the given field
// with the given property schema. Extra keys are ignored.
func nullableSchema(field, property string) string {
	return `{
	"type": "object",
	"required": ["` + field + `"],
	"properties": {"` + field + `": ` + property + `}
}`
}
