package service

import "errors"

// ErrorCode categorizes guard failures with HTTP-status-like codes. Any
// error without a code is surfaced as INTERNAL_SERVER_ERROR.
type ErrorCode string

const (
	CodeBadRequest ErrorCode = "BAD_REQUEST"
	CodeForbidden  ErrorCode = "FORBIDDEN"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeInternal   ErrorCode = "INTERNAL_SERVER_ERROR"
)

type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

func notFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// AsError extracts the typed service error, if any.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
