// Package rclgo implements a deterministic, statically-sized callback
// executor for pub/sub and request/response middleware, modeled on
// ROS2's rclc executor (spec.md §1).
package rclgo

import (
	"errors"
	"fmt"

	"github.com/loopwire/rclgo/internal/rclerrors"
)

// Error represents a structured rclgo error with context and a taxonomy
// code (spec.md §7).
type Error struct {
	Op    string    // Operation that failed (e.g. "Init", "AddSubscription")
	Index int       // Handle index, if applicable (-1 if not)
	Code  ErrorCode // High-level error category
	Msg   string    // Human-readable message
	Inner error     // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Index >= 0 {
		parts = append(parts, fmt.Sprintf("index=%d", e.Index))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("rclgo: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("rclgo: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Inner }

// Is provides errors.Is support for ErrorCode comparison.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrorCode represents the high-level error categories from spec.md §7.
type ErrorCode string

const (
	ErrCodeInvalidArgument  ErrorCode = "invalid argument"
	ErrCodeCapacityExceeded ErrorCode = "capacity exceeded"
	ErrCodeNotFound         ErrorCode = "not found"
	ErrCodeBadAlloc         ErrorCode = "allocation failed"
	ErrCodeTakeFailed       ErrorCode = "take failed"
	ErrCodeTimerCanceled    ErrorCode = "timer canceled"
	ErrCodeMiddleware       ErrorCode = "middleware error"
)

// NewError creates a new structured error.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Index: -1, Code: code, Msg: msg}
}

// NewIndexError creates a new structured error scoped to a handle index.
func NewIndexError(op string, index int, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Index: index, Code: code, Msg: msg}
}

// WrapError wraps an existing error with rclgo context, mapping it onto
// the internal rclerrors sentinels where possible.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	if re, ok := inner.(*Error); ok {
		return &Error{Op: op, Index: re.Index, Code: re.Code, Msg: re.Msg, Inner: re.Inner}
	}

	return &Error{
		Op:    op,
		Index: -1,
		Code:  mapSentinelToCode(inner),
		Msg:   inner.Error(),
		Inner: inner,
	}
}

func mapSentinelToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, rclerrors.ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, rclerrors.ErrCapacityExceeded):
		return ErrCodeCapacityExceeded
	case errors.Is(err, rclerrors.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, rclerrors.ErrBadAlloc):
		return ErrCodeBadAlloc
	case errors.Is(err, rclerrors.ErrTakeFailed):
		return ErrCodeTakeFailed
	case errors.Is(err, rclerrors.ErrTimerCanceled):
		return ErrCodeTimerCanceled
	case errors.Is(err, rclerrors.ErrMiddleware):
		return ErrCodeMiddleware
	default:
		return ErrCodeMiddleware
	}
}

// IsCode checks if an error matches a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
