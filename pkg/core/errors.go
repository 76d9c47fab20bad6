package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize errors for programmatic handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates the venue rejected the request for rate.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates invalid or missing credentials.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a venue-side error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates the account lacks balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates venue rules.
	ErrorTypeInvalidOrder
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
	}[t]
}

// Sentinel errors raised before any network call is attempted.
var (
	// ErrClientClosed is returned when using a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when a private call has no credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrNoAPIKey is returned when the key ring has no usable key.
	ErrNoAPIKey = errors.New("no available API key")
	// ErrSymbolRequired is returned by operations that cannot default the
	// market symbol.
	ErrSymbolRequired = errors.New("symbol argument is required")
	// ErrMarketsNotLoaded is returned when reference data has not been
	// loaded yet.
	ErrMarketsNotLoaded = errors.New("markets not loaded")
	// ErrNetworkMismatch is returned when the venue answers a deposit
	// address request with a network other than the one requested.
	ErrNetworkMismatch = errors.New("deposit address network does not match requested network")
)

// ExchangeError represents a structured error returned from the venue.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response, when any.
	StatusCode int `json:"status_code,omitempty"`
	// Code is the stable machine-readable error code.
	Code string `json:"code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Exchange identifies which venue returned this error.
	Exchange string `json:"exchange,omitempty"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (%d/%s): %s",
			e.Exchange, e.Type, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (%d): %s",
		e.Exchange, e.Type, e.StatusCode, e.Message)
}

// WithCode returns the error with the specified stable code set.
func (e *ExchangeError) WithCode(code ErrorCode) *ExchangeError {
	e.Code = string(code)
	return e
}

// NewExchangeError creates an ExchangeError with the current timestamp.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// IsAuthenticationError reports whether err is an authentication failure.
func IsAuthenticationError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeAuthentication
	}
	return false
}

// IsInvalidOrderError reports whether err is an order validation failure.
func IsInvalidOrderError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeInvalidOrder
	}
	return false
}

// IsRateLimitError reports whether err is a venue rate-limit rejection.
func IsRateLimitError(err error) bool {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeRateLimit
	}
	return false
}
