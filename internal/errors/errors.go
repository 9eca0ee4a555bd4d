package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeFileSystem
	ErrorTypeParsing
	ErrorTypeDependency
	ErrorTypeConfiguration
	ErrorTypeTimeout
	ErrorTypeNotFound
)

// Codes raised by the analysis pipeline and its commands
const (
	CodeAPKPathInvalid    = "APK_PATH_INVALID"
	CodeArchiveUnreadable = "ARCHIVE_UNREADABLE"
	CodePolicyCompile     = "POLICY_COMPILE"
	CodePolicyEval        = "POLICY_EVAL"
	CodeConfigLoad        = "CONFIG_LOAD"
	CodeToolNotFound      = "TOOL_NOT_FOUND"
	CodeDiffInput         = "DIFF_INPUT"
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeFileSystem:
		return "FILESYSTEM"
	case ErrorTypeParsing:
		return "PARSING"
	case ErrorTypeDependency:
		return "DEPENDENCY"
	case ErrorTypeConfiguration:
		return "CONFIGURATION"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// ResultError is returned at the boundary of an analysis step when the
// caller supplied something unusable, as opposed to poor tool output.
type ResultError struct {
	Type        ErrorType         `json:"type"`
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Cause       error             `json:"cause,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (e *ResultError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ResultError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code
func (e *ResultError) Is(target error) bool {
	if t, ok := target.(*ResultError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error
func (e *ResultError) WithContext(key, value string) *ResultError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *ResultError) WithSuggestion(suggestion string) *ResultError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ResultError) WithSuggestions(suggestions []string) *ResultError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// FormatDetailed returns a detailed error message with context and suggestions
func (e *ResultError) FormatDetailed() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%s error [%s]: %s\n", e.Type.String(), e.Code, e.Message))

	if len(e.Context) > 0 {
		builder.WriteString("\nContext:\n")
		keys := make([]string, 0, len(e.Context))
		for key := range e.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			builder.WriteString(fmt.Sprintf("   %s: %s\n", key, e.Context[key]))
		}
	}

	if e.Cause != nil {
		builder.WriteString(fmt.Sprintf("\nUnderlying cause: %v\n", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		builder.WriteString("\nSuggestions:\n")
		for _, suggestion := range e.Suggestions {
			builder.WriteString(fmt.Sprintf("   - %s\n", suggestion))
		}
	}

	return builder.String()
}

// NewError creates a new ResultError
func NewError(errorType ErrorType, code, message string) *ResultError {
	return &ResultError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Context: make(map[string]string),
	}
}

// WrapError wraps an existing error with ResultError
func WrapError(err error, errorType ErrorType, code, message string) *ResultError {
	return &ResultError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]string),
	}
}

// As extracts a *ResultError from an error chain
func As(err error) (*ResultError, bool) {
	var re *ResultError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// HasCode reports whether err carries a ResultError with the given code
func HasCode(err error, code string) bool {
	re, ok := As(err)
	return ok && re.Code == code
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *ResultError {
	return NewError(ErrorTypeValidation, code, message).
		WithSuggestion("Check the input parameters and try again")
}

// NewParsingError creates a parsing error
func NewParsingError(code, message string) *ResultError {
	return NewError(ErrorTypeParsing, code, message).
		WithSuggestions([]string{
			"Verify the file format is correct",
			"Check if the file is corrupted",
		})
}

// NewDependencyError creates a dependency error
func NewDependencyError(code, message string) *ResultError {
	return NewError(ErrorTypeDependency, code, message).
		WithSuggestions([]string{
			"Run 'apkinspect tools' to check the SDK tools",
			"Set tools.build_tools and tools.jdk_bin in apkinspect.yaml",
		})
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *ResultError {
	return NewError(ErrorTypeConfiguration, code, message).
		WithSuggestions([]string{
			"Check the configuration file syntax",
			"Run 'apkinspect config init' to regenerate configuration",
		})
}

// NewAPKPathError is raised when the APK path is needed but cannot be used
func NewAPKPathError(path string, cause error) *ResultError {
	msg := "APK file is missing or not a regular file"
	var e *ResultError
	if cause != nil {
		e = WrapError(cause, ErrorTypeValidation, CodeAPKPathInvalid, msg)
	} else {
		e = NewError(ErrorTypeValidation, CodeAPKPathInvalid, msg)
	}
	return e.WithContext("apk_path", path).
		WithSuggestion("Pass the path of an existing .apk file")
}
