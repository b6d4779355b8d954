package llm

import (
	"errors"
	"fmt"
	"time"
)

type ErrorKind string

const (
	KindRateLimited   ErrorKind = "rate_limited"
	KindUnavailable   ErrorKind = "unavailable"
	KindInvalidOutput ErrorKind = "invalid_output"
	KindTruncated     ErrorKind = "truncated"
	KindConfig        ErrorKind = "config"
)

// Error 统一各家 SDK 的错误
type Error struct {
	Kind       ErrorKind
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("llm %s", e.Kind)
	}
	return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// fromStatus 根据 HTTP 状态码归类
func fromStatus(status int, err error) error {
	switch {
	case status == 429:
		return &Error{Kind: KindRateLimited, Err: err}
	case status == 400 || status == 401 || status == 403 || status == 404:
		return &Error{Kind: KindConfig, Err: err}
	default:
		return &Error{Kind: KindUnavailable, Err: err}
	}
}
