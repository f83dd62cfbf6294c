package domain

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeConfigError    = "CONFIG_ERROR"
	ErrCodeToolInvocation = "TOOL_INVOCATION"
	ErrCodeParseError     = "PARSE_ERROR"
	ErrCodeCacheError     = "CACHE_ERROR"
)

// Sentinel errors
var (
	// ErrToolNotFound is returned when a tool binary cannot be resolved on PATH
	ErrToolNotFound = errors.New("tool binary not found")

	// ErrToolTimeout is returned when a tool invocation exceeds its time bound
	ErrToolTimeout = errors.New("tool invocation timed out")

	// ErrUnexpectedExit is returned when a tool exits with a code it does not define as success
	ErrUnexpectedExit = errors.New("tool exited with unexpected status")

	// ErrInvalidRoot is returned when the analysis root is not an existing directory
	ErrInvalidRoot = errors.New("analysis root is not a directory")

	// ErrCacheMiss is returned by report caches when no entry exists for a key
	ErrCacheMiss = errors.New("report not cached")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewCacheError creates a report cache error
func NewCacheError(message string, cause error) error {
	return NewDomainError(ErrCodeCacheError, message, cause)
}

// ToolInvocationError reports that an external tool could not be run to completion.
// It is fatal for that tool's report section only.
type ToolInvocationError struct {
	Tool     ToolName
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface
func (e *ToolInvocationError) Error() string {
	msg := fmt.Sprintf("%s (%s): %v", e.Tool, e.Command, e.Err)
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// NewToolInvocationError creates a ToolInvocationError for the given tool and command
func NewToolInvocationError(tool ToolName, command string, err error) *ToolInvocationError {
	return &ToolInvocationError{Tool: tool, Command: command, Err: err}
}

// WithExitCode records the exit code of the failed process
func (e *ToolInvocationError) WithExitCode(code int) *ToolInvocationError {
	e.ExitCode = code
	return e
}

// WithStderr records the tail of the failed process' stderr
func (e *ToolInvocationError) WithStderr(stderr string) *ToolInvocationError {
	const maxStderr = 512
	if len(stderr) > maxStderr {
		stderr = "..." + stderr[len(stderr)-maxStderr:]
	}
	e.Stderr = stderr
	return e
}

// ParseError reports that a tool's entire output matched no recognized shape.
type ParseError struct {
	Tool ToolName
	Err  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s output: %v", e.Tool, e.Err)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError for the given tool
func NewParseError(tool ToolName, err error) *ParseError {
	return &ParseError{Tool: tool, Err: err}
}

// ErrorCode classifies err by the first coded error in its chain. It
// returns "" for errors that carry no code.
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var ie *ToolInvocationError
	if errors.As(err, &ie) {
		return ErrCodeToolInvocation
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return ErrCodeParseError
	}
	return ""
}
