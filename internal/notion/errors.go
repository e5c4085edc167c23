package notion

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing setting that an operation requires. It is
// never retried.
type ConfigError struct {
	Setting string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Setting, e.Message)
}

// ErrDatabaseIDRequired is returned when neither the call nor the service
// supplies a database id.
var ErrDatabaseIDRequired = &ConfigError{
	Setting: "database_id",
	Message: "database ID is required",
}

// ErrTokenRequired is returned when a service is built without a token.
var ErrTokenRequired = &ConfigError{
	Setting: "token",
	Message: "integration token is required",
}

// IsConfigError reports whether err (or any error in its chain) is a
// ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Method     string
	Path       string

	// Body is the raw response body, kept for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if e.Code != "" {
		return fmt.Sprintf(
			"notion API error (%d %s) on %s %s: %s",
			e.StatusCode, e.Code, e.Method, e.Path, msg,
		)
	}
	return fmt.Sprintf(
		"unexpected status %d on %s %s: %s",
		e.StatusCode, e.Method, e.Path, msg,
	)
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err carries an API response with the given
// status code.
func IsStatus(err error, code int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == code
}

// upstreamMessage returns the server's message for err, or err's text.
func upstreamMessage(err error) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
