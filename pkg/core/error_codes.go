package core

import "errors"

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

// Error code constants used across the integration.
const (
	ErrCodeNetwork       ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout       ErrorCode = "TIMEOUT"
	ErrCodeRateLimit     ErrorCode = "RATE_LIMIT"
	ErrCodeAuth          ErrorCode = "AUTH_ERROR"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeServerError   ErrorCode = "SERVER_ERROR"
	ErrCodeInvalidOrder  ErrorCode = "INVALID_ORDER"
	ErrCodeInvalidSymbol ErrorCode = "INVALID_SYMBOL"

	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrCodeClientClosed  ErrorCode = "CLIENT_CLOSED"

	ErrCodeNoCredentials ErrorCode = "NO_CREDENTIALS"
	ErrCodeNoAPIKey      ErrorCode = "NO_API_KEY"
)

// IsErrorCode checks whether err carries the specified stable code.
func IsErrorCode(err error, code ErrorCode) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return ErrorCode(exErr.Code) == code
	}
	return false
}
