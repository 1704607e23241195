package domain

import "fmt"

// ErrorKind 领域错误类型（HTTP 层映射到对应状态码）
type ErrorKind string

const (
	ErrKindNotFound     ErrorKind = "NOT_FOUND"
	ErrKindUnauthorized ErrorKind = "UNAUTHORIZED"
	ErrKindForbidden    ErrorKind = "FORBIDDEN"
	ErrKindBadRequest   ErrorKind = "BAD_REQUEST"
	ErrKindInternal     ErrorKind = "INTERNAL_SERVER_ERROR"
)

// Error 领域错误
// Repository 层不抛领域错误（查不到返回 nil），领域错误由 Service 层产生
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NotFoundError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindNotFound, Message: fmt.Sprintf(format, args...)}
}

func UnauthorizedError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func ForbiddenError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindForbidden, Message: fmt.Sprintf(format, args...)}
}

func BadRequestError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func InternalError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindInternal, Message: fmt.Sprintf(format, args...)}
}
