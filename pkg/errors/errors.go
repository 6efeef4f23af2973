// Package errors defines the categorized error taxonomy of the engine.
// Failures inside the engine are local-and-degrade: a malformed record is
// skipped for its comparison, a lookup failure turns one unit of work into
// its safest "no match" outcome, and ambiguity is reported for a human to
// resolve. The categories here let the CLI map what DID fail to a
// suggestion and an exit code.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category represents the broad class of an error.
type Category string

const (
	// CategoryValidation marks malformed input: a record missing a field
	// it needs for a comparison.
	CategoryValidation Category = "validation"
	// CategoryLookup marks a data-access collaborator that could not be
	// reached; the affected unit degraded to its safe outcome.
	CategoryLookup Category = "lookup"
	// CategoryAmbiguous marks multiple equally valid results the engine
	// refuses to auto-resolve.
	CategoryAmbiguous Category = "ambiguous"
	// CategoryFile and CategoryParse cover the CLI's file loading surface.
	CategoryFile  Category = "file"
	CategoryParse Category = "parse"
	// CategoryConfiguration marks invalid engine or CLI configuration.
	CategoryConfiguration Category = "configuration"
	// CategoryInternal marks everything unexpected.
	CategoryInternal Category = "internal"
)

// Context carries additional structured information about an error.
type Context map[string]interface{}

// EngineError is the base error type for all engine and CLI errors.
type EngineError struct {
	Category   Category          `json:"category"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns the CLI exit code for the error category.
func (e *EngineError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryAmbiguous:
		return 5
	case CategoryLookup:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error.
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *EngineError) WithSuggestion(suggestion string) *EngineError {
	e.Suggestion = suggestion
	return e
}

// FormatDetailed returns a multi-line rendering with context and
// suggestion, for verbose CLI output.
func (e *EngineError) FormatDetailed() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Category, e.Message)
	for key, value := range e.Context {
		fmt.Fprintf(&b, "\n  %s: %v", key, value)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  suggestion: %s", e.Suggestion)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "\n  cause: %v", e.Cause)
	}
	return b.String()
}

// stackTracer is the pkg/errors interface for extracting stack traces.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new EngineError.
func New(category Category, message string) *EngineError {
	return &EngineError{
		Category:   category,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with category context. Returns nil when err
// is nil.
func Wrap(err error, category Category, message string) *EngineError {
	if err == nil {
		return nil
	}
	wrapped := &EngineError{
		Category: category,
		Message:  message,
		Cause:    err,
	}
	if tracer, ok := errors.WithStack(err).(stackTracer); ok {
		wrapped.StackTrace = tracer.StackTrace()
	}
	return wrapped
}

// Specific constructors.

// NewValidationError creates a validation error for a malformed field.
func NewValidationError(field string, value interface{}) *EngineError {
	return New(CategoryValidation,
		fmt.Sprintf("invalid value in field '%s': %v", field, value)).
		WithSuggestion("check the field value and format").
		WithContext("field", field).
		WithContext("value", value)
}

// NewLookupError wraps a data-access failure. The affected unit of work
// should already have degraded to its safe outcome when this is raised.
func NewLookupError(resource string, err error) *EngineError {
	return Wrap(err, CategoryLookup,
		fmt.Sprintf("lookup failed for %s", resource)).
		WithSuggestion("the data source may be temporarily unavailable; retry later").
		WithContext("resource", resource)
}

// NewAmbiguousError reports multiple equally valid results.
func NewAmbiguousError(message string) *EngineError {
	return New(CategoryAmbiguous, message).
		WithSuggestion("resolve the ambiguity manually before retrying")
}

// NewFileError creates a file access error for the CLI surface.
func NewFileError(path string, err error) *EngineError {
	result := Wrap(err, CategoryFile, fmt.Sprintf("cannot read file: %s", path))
	if result == nil {
		result = New(CategoryFile, fmt.Sprintf("cannot read file: %s", path))
	}
	return result.
		WithSuggestion("check that the file exists and is readable").
		WithContext("file_path", path)
}

// NewParseError creates a row-level parse error with its location.
func NewParseError(file string, line int, field string, err error) *EngineError {
	result := Wrap(err, CategoryParse,
		fmt.Sprintf("invalid data in %s at line %d, field '%s'", file, line, field))
	if result == nil {
		result = New(CategoryParse,
			fmt.Sprintf("invalid data in %s at line %d, field '%s'", file, line, field))
	}
	return result.
		WithContext("file", file).
		WithContext("line", line).
		WithContext("field", field)
}

// NewConfigError creates a configuration error.
func NewConfigError(setting string, err error) *EngineError {
	result := Wrap(err, CategoryConfiguration,
		fmt.Sprintf("invalid configuration for '%s'", setting))
	if result == nil {
		result = New(CategoryConfiguration,
			fmt.Sprintf("invalid configuration for '%s'", setting))
	}
	return result.
		WithSuggestion("check the configuration documentation for valid values").
		WithContext("setting", setting)
}

// Inspection helpers.

// GetCategory extracts the category from any error, defaulting to internal.
func GetCategory(err error) Category {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Category
	}
	return CategoryInternal
}

// IsCategory reports whether an error belongs to the given category.
func IsCategory(err error, category Category) bool {
	return GetCategory(err) == category
}

// GetExitCode extracts the CLI exit code from any error.
func GetExitCode(err error) int {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.GetExitCode()
	}
	return 1
}
