package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidConnection = "INVALID_CONNECTION"
	ErrCodeCyclicConnection  = "CYCLIC_CONNECTION"
	ErrCodeInvalidDate       = "INVALID_DATE"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeExecution         = "EXECUTION_ERROR"
	ErrCodeRuntime           = "RUNTIME_ERROR"
	ErrCodeStore             = "STORE_ERROR"
)

// AppError is the structured error type for all workflow-app operations.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	NodeID  string         `json:"node_id,omitempty"`
	Cause   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("[%s] node %s: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewError creates a new AppError.
func NewError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewErrorf creates a new AppError with a formatted message.
func NewErrorf(code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithNode attaches a node ID to the error.
func (e *AppError) WithNode(nodeID string) *AppError {
	e.NodeID = nodeID
	return e
}

// WithCause attaches an underlying cause.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
