package apperr

import (
	"errors"
	"fmt"
)

// 错误分类，配合 errors.Is 使用
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrCourseNotFound       = NotFound("course", "")
	ErrModuleNotFound       = NotFound("module", "")
	ErrUserNotFound         = NotFound("user", "")
	ErrPostNotFound         = NotFound("discussion post", "")
	ErrCertificateNotFound  = NotFound("certificate", "")
	ErrCategoryNotFound     = NotFound("category", "")
	ErrResourceNotFound     = NotFound("resource", "")
	ErrNotificationNotFound = NotFound("notification", "")
)

// Error 携带分类、操作名和面向用户的消息
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Is 让同一分类、同一消息的错误彼此相等，便于比较哨兵错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message && (t.Op == "" || t.Op == e.Op)
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(kind, id string) error {
	msg := kind + " not found"
	if id != "" {
		return &Error{Kind: ErrNotFound, Message: msg, Err: fmt.Errorf("id %s", id)}
	}
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Persistence(op string, err error) error {
	return &Error{Kind: ErrPersistence, Op: op, Err: err}
}

func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Message 返回可直接展示给调用方的消息，持久化错误不暴露底层细节
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if errors.Is(e.Kind, ErrPersistence) {
		return "failed to save changes, please retry"
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}
