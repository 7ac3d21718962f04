package hass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/gorilla/websocket"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeConnection indicates a network-level error (refused, unreachable, dropped)
	ErrTypeConnection ErrorType = iota
	// ErrTypeAuth indicates Home Assistant rejected the access token
	ErrTypeAuth
	// ErrTypeResult indicates a command completed with success=false
	ErrTypeResult
	// ErrTypeTimeout indicates no reply arrived in time
	ErrTypeTimeout
	// ErrTypeProtocol indicates a message that does not follow the websocket API
	ErrTypeProtocol
	// ErrTypeClosed indicates the client was closed
	ErrTypeClosed
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeResult:
		return "Command Failed"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeClosed:
		return "Connection Closed"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every Client operation.
type Error struct {
	Type      ErrorType // Category of error
	Message   string    // Human-readable error message
	Code      string    // Home Assistant error code for ErrTypeResult, e.g. "not_found"
	Err       error     // Underlying error (if any)
	Retryable bool      // Whether reconnecting may help
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrClosed is returned after Close.
var ErrClosed = &Error{Type: ErrTypeClosed, Message: "client closed"}

// NewAuthError creates an authentication error. Retrying with the same
// token cannot succeed.
func NewAuthError(message string) *Error {
	return &Error{Type: ErrTypeAuth, Message: message}
}

// NewResultError creates an error from a failed command result.
func NewResultError(code, message string) *Error {
	return &Error{Type: ErrTypeResult, Code: code, Message: message}
}

// NewProtocolError creates an error for an unexpected message.
func NewProtocolError(message string, err error) *Error {
	return &Error{Type: ErrTypeProtocol, Message: message, Err: err, Retryable: true}
}

// ClassifyError wraps err in an *Error with the best matching type.
func ClassifyError(message string, err error) *Error {
	if err == nil {
		return nil
	}

	var he *Error
	if errors.As(err, &he) {
		return he
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &Error{Type: ErrTypeTimeout, Message: message, Err: err, Retryable: true}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Type: ErrTypeClosed, Message: message, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:      ErrTypeConnection,
			Message:   fmt.Sprintf("%s: DNS resolution failed for %s", message, dnsErr.Name),
			Err:       err,
			Retryable: dnsErr.IsTemporary,
		}
	}

	if errors.Is(err, websocket.ErrBadHandshake) {
		return &Error{Type: ErrTypeConnection, Message: message + ": websocket handshake rejected", Err: err}
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return &Error{Type: ErrTypeConnection, Message: message + ": server closed the connection", Err: err, Retryable: true}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{Type: ErrTypeConnection, Message: message + ": connection refused", Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{Type: ErrTypeConnection, Message: message + ": host unreachable", Err: err, Retryable: true}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{Type: ErrTypeConnection, Message: message + ": network unreachable", Err: err, Retryable: true}
		}
	}

	return &Error{Type: ErrTypeConnection, Message: message, Err: err, Retryable: true}
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	var he *Error
	return errors.As(err, &he) && he.Type == ErrTypeAuth
}

// IsRetryable reports whether reconnecting may fix err.
func IsRetryable(err error) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Retryable
	}
	return false
}

// GetUserFriendlyMessage returns a one-line explanation suitable for the UI.
func GetUserFriendlyMessage(err error) string {
	var he *Error
	if !errors.As(err, &he) {
		return err.Error()
	}
	switch he.Type {
	case ErrTypeAuth:
		return "Home Assistant rejected the access token. Create a long-lived token in your profile and try again."
	case ErrTypeTimeout:
		return "Home Assistant did not answer in time."
	case ErrTypeConnection:
		return "Cannot reach Home Assistant: " + he.Message
	case ErrTypeResult:
		return "Home Assistant refused the request: " + he.Message
	default:
		return he.Error()
	}
}
