package card

import (
	"errors"
	"fmt"
)

// ConfigError reports an unusable card configuration. It is the only error
// the card surfaces to its host; everything else is contained.
type ConfigError struct {
	Field   string // Dotted path of the offending field, e.g. "items[2].entity"
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	prefix := "invalid card configuration"
	if e.Field != "" {
		prefix = fmt.Sprintf("%s: %s", prefix, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError for field.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
