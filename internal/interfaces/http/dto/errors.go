package dto

import "net/http"

// Domain error codes, see shared.DomainError
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeImmutableField      = "IMMUTABLE_FIELD"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodePasswordHash        = "PASSWORD_HASH_ERROR"
)

// Generic messages
const (
	MsgUpstreamUnavailable = "Không thể kết nối tới máy chủ"
	MsgInternal            = "Lỗi máy chủ nội bộ"
	MsgInvalidJSON         = "Dữ liệu gửi lên không phải JSON hợp lệ"
	MsgRateLimited         = "Quá nhiều yêu cầu, vui lòng thử lại sau"
	MsgBodyTooLarge        = "Dữ liệu gửi lên quá lớn"
	MsgRouteNotFound       = "Không tìm thấy đường dẫn"
	MsgUnauthorized        = "Chưa đăng nhập"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Validation errors -> 400 Bad Request
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeImmutableField: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Failures on our side or the webhook API's
	ErrCodeUpstreamUnavailable: http.StatusInternalServerError,
	ErrCodePasswordHash:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
