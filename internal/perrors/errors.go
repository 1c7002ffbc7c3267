// Package perrors defines the five error kinds of SPEC_FULL.md §7:
// ConfigError, ConnectionError, InvalidResponseError, NotFoundError and
// ModelUnavailableError. ConfigError, ConnectionError and
// InvalidResponseError wrap an underlying cause and support
// errors.Is/errors.As on it via Unwrap; NotFoundError and
// ModelUnavailableError carry no cause. The shape follows the
// teacher's internal/errors package (IndexingError, ParseError, ...).
package perrors

import (
	"fmt"
	"time"
)

// ConfigError reports a missing, malformed, or incomplete configuration
// or prompt file. Raised by validators before the scheduler loop starts;
// always fatal.
type ConfigError struct {
	Field      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError builds a ConfigError for the named field/file.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %v", e.Underlying)
	}
	return fmt.Sprintf("config error for %s: %v", e.Field, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// ConnectionError reports an outbound HTTP transport failure to the
// metrics, repo-host, or model backend. Aborts the current tick; the
// scheduler continues to the next one.
type ConnectionError struct {
	URL        string
	Underlying error
	Timestamp  time.Time
}

// NewConnectionError builds a ConnectionError for the given endpoint.
func NewConnectionError(url string, err error) *ConnectionError {
	return &ConnectionError{URL: url, Underlying: err, Timestamp: time.Now()}
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s not reached, check connection: %v", e.URL, e.Underlying)
}

func (e *ConnectionError) Unwrap() error { return e.Underlying }

// InvalidResponseError reports a model backend payload that lacked a
// usable `response` field (missing key, malformed JSON, non-200).
// Aborts the current tick.
type InvalidResponseError struct {
	Underlying error
	Timestamp  time.Time
}

// NewInvalidResponseError builds an InvalidResponseError.
func NewInvalidResponseError(err error) *InvalidResponseError {
	return &InvalidResponseError{Underlying: err, Timestamp: time.Now()}
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from model backend: %v", e.Underlying)
}

func (e *InvalidResponseError) Unwrap() error { return e.Underlying }

// NotFoundError reports that no accessible repository matched the
// configured name with both pull and push permissions. Raised at
// Publisher construction; fatal.
type NotFoundError struct {
	Resource  string
	Timestamp time.Time
}

// NewNotFoundError builds a NotFoundError for the named resource.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource, Timestamp: time.Now()}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with read & write permissions not found", e.Resource)
}

// ModelUnavailableError reports that the configured model name was not
// listed by the model backend at Regeneration time. Raised mid-tick;
// aborts the tick.
type ModelUnavailableError struct {
	Model     string
	Timestamp time.Time
}

// NewModelUnavailableError builds a ModelUnavailableError.
func NewModelUnavailableError(model string) *ModelUnavailableError {
	return &ModelUnavailableError{Model: model, Timestamp: time.Now()}
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("%s could not be found in Ollama", e.Model)
}
