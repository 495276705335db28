package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by AppError.
const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeRequestFailed = "REQUEST_FAILED"
	CodeNetwork       = "NETWORK_ERROR"
	CodeBusy          = "BUSY"
)

// ErrNotSignedIn is returned by operations that need a session when there is none.
var ErrNotSignedIn = &AppError{Code: CodeUnauthorized, Message: "Not signed in"}

// ErrorResponse is the error body returned by the backend.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns the server-supplied message, preferring "message" over "error".
func (r ErrorResponse) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

// AppError represents a client-side application error
type AppError struct {
	Code    string
	Message string
	// Status is the HTTP status when the error came from a response, 0 otherwise.
	Status int
	// Remote is the message supplied by the backend, empty when there was none.
	Remote string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports input rejected before any request is sent.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewBusyError reports a mutation rejected because one is already in flight.
func NewBusyError(key string) *AppError {
	return &AppError{
		Code:    CodeBusy,
		Message: fmt.Sprintf("%s is already in progress", key),
	}
}

// NewNetworkError wraps a transport failure that produced no response.
func NewNetworkError(err error) *AppError {
	return &AppError{
		Code:    CodeNetwork,
		Message: "Network request failed",
		Err:     err,
	}
}

// NewResponseError builds the error for a non-2xx response.
func NewResponseError(status int, message string) *AppError {
	code := CodeRequestFailed
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = CodeUnauthorized
	case http.StatusNotFound:
		code = CodeNotFound
	}
	text := message
	if text == "" {
		text = http.StatusText(status)
	}
	return &AppError{
		Code:    code,
		Message: text,
		Status:  status,
		Remote:  message,
	}
}

// IsUnauthorized reports whether err is a credential rejection.
func IsUnauthorized(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeUnauthorized
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ServerMessage returns the message the backend supplied with err, if any.
func ServerMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Remote
	}
	return ""
}

// MessageOr returns the server or validation message carried by err, or
// fallback when there is none.
func MessageOr(err error, fallback string) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fallback
	}
	switch {
	case appErr.Remote != "":
		return appErr.Remote
	case appErr.Code == CodeValidation, appErr.Code == CodeBusy:
		return appErr.Message
	}
	return fallback
}
