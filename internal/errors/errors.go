// Package errors provides centralized error handling with component and
// category metadata for structured logging.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"time"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryAudioSource   ErrorCategory = "audio-source"
	CategoryAudio         ErrorCategory = "audio-processing"
	CategoryFileIO        ErrorCategory = "file-io"
	CategorySink          ErrorCategory = "sink"
	CategoryState         ErrorCategory = "state"
	CategoryGeneric       ErrorCategory = "generic"
)

// ComponentUnknown is used when the component cannot be determined.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with additional context and metadata
type EnhancedError struct {
	Err       error          // Original error
	Component string         // Component where error occurred
	Category  ErrorCategory  // Error category for better grouping
	Context   map[string]any // Additional context data
	Timestamp time.Time      // When the error occurred
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is matches either the wrapped error or another EnhancedError of the
// same category.
func (ee *EnhancedError) Is(target error) bool {
	var other *EnhancedError
	if stderrors.As(target, &other) {
		return ee.Category == other.Category
	}
	return stderrors.Is(ee.Err, target)
}

// LogAttrs returns the metadata as alternating key/value pairs suitable
// for slog calls.
func (ee *EnhancedError) LogAttrs() []any {
	attrs := []any{
		"component", ee.Component,
		"category", string(ee.Category),
	}
	for k, v := range ee.Context {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// ErrorBuilder provides a fluent interface for building enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates an ErrorBuilder wrapping err. A nil err produces a generic
// error whose message comes from the context data.
func New(err error) *ErrorBuilder {
	if err == nil {
		err = stderrors.New("unspecified error")
	}
	return &ErrorBuilder{
		err:      err,
		category: CategoryGeneric,
	}
}

// Newf creates an ErrorBuilder from a formatted message.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// NewStd creates an ErrorBuilder from a plain message.
func NewStd(text string) *ErrorBuilder {
	return New(stderrors.New(text))
}

// Component sets the component name
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds a key/value pair of context data
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build constructs the final EnhancedError
func (eb *ErrorBuilder) Build() *EnhancedError {
	component := eb.component
	if component == "" {
		component = ComponentUnknown
	}

	var context map[string]any
	if eb.context != nil {
		context = make(map[string]any, len(eb.context))
		maps.Copy(context, eb.context)
	}

	return &EnhancedError{
		Err:       eb.err,
		Component: component,
		Category:  eb.category,
		Context:   context,
		Timestamp: time.Now(),
	}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// HasCategory reports whether err carries the given category anywhere in
// its tree.
func HasCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	for As(err, &ee) {
		if ee.Category == category {
			return true
		}
		err = ee.Unwrap()
		if err == nil {
			return false
		}
	}
	return false
}

// LogAttrs returns the metadata of the nearest EnhancedError in err's
// tree as slog key/value pairs, or nil for plain errors.
func LogAttrs(err error) []any {
	var ee *EnhancedError
	if As(err, &ee) {
		return ee.LogAttrs()
	}
	return nil
}
