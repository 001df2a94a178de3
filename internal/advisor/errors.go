package advisor

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for advisor errors.
var (
	ErrNoAPIKey      = errors.New("ai api key is required")
	ErrEmptyResponse = errors.New("ai returned no text")
	ErrInvalidJSON   = errors.New("ai returned invalid json")
)

// ValidationError lists schema violations in an AI response.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a JSON field path.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "ai response failed schema validation: " + strings.Join(parts, "; ")
}
