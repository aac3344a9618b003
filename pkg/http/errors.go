package http

import (
	"fmt"
	"net/http"
	"time"
)

// Error codes carried in the response body.
const (
	CodeNotFound        = "ERR_NOT_FOUND"
	CodeRateLimited     = "ERR_RATE_LIMITED"
	CodeUpstream        = "ERR_UPSTREAM"
	CodeUpstreamTimeout = "ERR_UPSTREAM_TIMEOUT"
	CodeInternal        = "ERR_INTERNAL"
)

// AppError is an error the API reports to clients with a status code.
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Field      string                 `json:"field,omitempty"`
	Params     map[string]interface{} `json:"params,omitempty"`
	Status     int                    `json:"-"`
	RetryAfter time.Duration          `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError. field may be empty.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam attaches a detail shown to the client.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError records the cause. It is logged, never serialized.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// NotFoundError reports an unknown symbol or resource.
func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, "", message, http.StatusNotFound)
}

// RateLimitedError reports an exhausted client bucket. A positive retryAfter
// is sent back as a Retry-After header.
func RateLimitedError(retryAfter time.Duration) *AppError {
	e := NewAppError(CodeRateLimited, "", "rate limited", http.StatusTooManyRequests)
	if retryAfter > 0 {
		e.RetryAfter = retryAfter
		e.WithParam("retryAfterSeconds", retryAfterSeconds(retryAfter))
	}
	return e
}

// UpstreamError reports a failed call to the market data provider.
func UpstreamError(err error) *AppError {
	return NewAppError(CodeUpstream, "", "upstream request failed", http.StatusBadGateway).WithError(err)
}

// UpstreamTimeoutError reports a provider call that ran out of time.
func UpstreamTimeoutError(err error) *AppError {
	return NewAppError(CodeUpstreamTimeout, "", "upstream timed out", http.StatusGatewayTimeout).WithError(err)
}

// InternalError reports a server-side failure.
func InternalError(err error) *AppError {
	return NewAppError(CodeInternal, "", "something went wrong", http.StatusInternalServerError).WithError(err)
}

func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
