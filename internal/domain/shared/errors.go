package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so wrapped
// copies with a localized message still match the sentinel values below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Không tìm thấy dữ liệu")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Dữ liệu đã tồn tại")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Dữ liệu không hợp lệ")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Chưa đăng nhập")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Không có quyền thực hiện")
	ErrImmutableField      = NewDomainError("IMMUTABLE_FIELD", "Trường này không được thay đổi")
	ErrUpstreamUnavailable = NewDomainError("UPSTREAM_UNAVAILABLE", "Không thể kết nối tới máy chủ")
)

// InvalidInput returns an INVALID_INPUT error with a specific message
func InvalidInput(message string) *DomainError {
	return NewDomainError(ErrInvalidInput.Code, message)
}

// NotFound returns a NOT_FOUND error with a specific message
func NotFound(message string) *DomainError {
	return NewDomainError(ErrNotFound.Code, message)
}
