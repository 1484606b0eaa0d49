package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"

	ErrCodeOK      ErrorCode = "OK"
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// Design-space engine error codes
const (
	// ErrCodeProjectionNotReady is returned when a denormalize or recommend
	// call arrives before any projection has been derived and published for
	// the current entry set and axis profile.
	ErrCodeProjectionNotReady ErrorCode = "SPACE_001"

	ErrCodeAxisProfileInvalid   ErrorCode = "SPACE_002"
	ErrCodeEntryNotFound        ErrorCode = "SPACE_003"
	ErrCodePointNotFound        ErrorCode = "SPACE_004"
	ErrCodePointDuplicate       ErrorCode = "SPACE_005"
	ErrCodeScoreOutOfRange      ErrorCode = "SPACE_006"
	ErrCodeCoordinateKeyInvalid ErrorCode = "SPACE_007"
	ErrCodeRecommendFailed      ErrorCode = "SPACE_008"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeProjectionNotReady:   http.StatusConflict,
	ErrCodeAxisProfileInvalid:   http.StatusBadRequest,
	ErrCodeEntryNotFound:        http.StatusNotFound,
	ErrCodePointNotFound:        http.StatusNotFound,
	ErrCodePointDuplicate:       http.StatusConflict,
	ErrCodeScoreOutOfRange:      http.StatusBadRequest,
	ErrCodeCoordinateKeyInvalid: http.StatusBadRequest,
	ErrCodeRecommendFailed:      http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeProjectionNotReady:   "projection not ready; normalize the entry set first",
	ErrCodeAxisProfileInvalid:   "invalid axis profile",
	ErrCodeEntryNotFound:        "catalog entry not found",
	ErrCodePointNotFound:        "attraction point not found",
	ErrCodePointDuplicate:       "attraction point already exists at this coordinate",
	ErrCodeScoreOutOfRange:      "score must be between 0 and 100",
	ErrCodeCoordinateKeyInvalid: "malformed coordinate key",
	ErrCodeRecommendFailed:      "neighbor recommendation failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
