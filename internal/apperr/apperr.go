// Package apperr defines coded errors returned by the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable error code sent to clients.
type Code string

const (
	CodeUnknown            Code = "1000"
	CodeInvalidParam       Code = "1001"
	CodeTooManyRequests    Code = "1006"
	CodeInternalError      Code = "1007"
	CodeServiceUnavailable Code = "1008"
	CodePayloadTooLarge    Code = "1009"
	CodeUnsupportedMedia   Code = "1010"
)

// AppError is an error with a client-facing code and message.
type AppError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of e carrying detail.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError returns a copy of e wrapping err.
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: codeToHTTPStatus(code)}
}

func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: codeToHTTPStatus(code), Err: err}
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid request")
	ErrTooManyRequests    = New(CodeTooManyRequests, "rate limit exceeded")
	ErrInternal           = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")
	ErrPayloadTooLarge    = New(CodePayloadTooLarge, "input too large")
	ErrUnsupportedMedia   = New(CodeUnsupportedMedia, "unsupported file type")
)

// As converts err to an AppError, wrapping unknown errors as internal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternalError, "internal server error")
}
