package newsletter

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input. It is raised before
// any model call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s must not be empty", e.Field)
}

// ResearchError wraps a model failure during research.
type ResearchError struct{ Err error }

func (e *ResearchError) Error() string { return fmt.Sprintf("research failed: %v", e.Err) }
func (e *ResearchError) Unwrap() error { return e.Err }

// GenerationError wraps a model failure while generating a newsletter.
type GenerationError struct{ Err error }

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// EditError wraps a model failure while editing a newsletter.
type EditError struct{ Err error }

func (e *EditError) Error() string { return fmt.Sprintf("edit failed: %v", e.Err) }
func (e *EditError) Unwrap() error { return e.Err }

var validationMessages = map[string]string{
	"topic":       "Please enter a topic for the newsletter.",
	"instruction": "Please enter an editing instruction.",
	"content":     "Generate a newsletter before editing.",
	"style":       "Please choose a valid writing style.",
	"tone":        "Please choose a valid tone.",
}

// UserMessage maps an error to the short notification shown to end users.
// Raw error details are never included.
func UserMessage(err error) string {
	var (
		validationErr *ValidationError
		researchErr   *ResearchError
		generationErr *GenerationError
		editErr       *EditError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		if msg, ok := validationMessages[validationErr.Field]; ok {
			return msg
		}
		return "Please check your input."
	case errors.As(err, &researchErr):
		return "Failed to conduct research."
	case errors.As(err, &generationErr):
		return "Failed to generate newsletter. Please try again."
	case errors.As(err, &editErr):
		return "Failed to edit newsletter. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
