package advisor

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// responseSchema describes an acceptable AI answer. score is deliberately
// untyped; non-numeric values are replaced by the engine score.
const responseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary", "top_suggestions"],
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "top_suggestions": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string"}
    },
    "score": {}
  }
}`

var responseSchemaLoader = gojsonschema.NewStringLoader(responseSchema) //nolint:gochecknoglobals // immutable schema

// validateResponse checks doc against responseSchema.
func validateResponse(doc string) error {
	result, err := gojsonschema.Validate(responseSchemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}
