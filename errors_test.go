package rclgo

import (
	"errors"
	"testing"

	"github.com/loopwire/rclgo/internal/rclerrors"
)

func TestStructuredError(t *testing.T) {
	err := NewError("Init", ErrCodeInvalidArgument, "capacity must be > 0")

	if err.Op != "Init" {
		t.Errorf("Expected Op=Init, got %s", err.Op)
	}
	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("Expected Code=ErrCodeInvalidArgument, got %s", err.Code)
	}

	expected := "rclgo: capacity must be > 0 (op=Init)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestIndexError(t *testing.T) {
	err := NewIndexError("AddSubscription", 3, ErrCodeCapacityExceeded, "table full")

	if err.Index != 3 {
		t.Errorf("Expected Index=3, got %d", err.Index)
	}

	expected := "rclgo: table full (op=AddSubscription)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestWrapErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		inner error
		want  ErrorCode
	}{
		{rclerrors.ErrInvalidArgument, ErrCodeInvalidArgument},
		{rclerrors.ErrCapacityExceeded, ErrCodeCapacityExceeded},
		{rclerrors.ErrNotFound, ErrCodeNotFound},
		{rclerrors.ErrBadAlloc, ErrCodeBadAlloc},
		{rclerrors.ErrTakeFailed, ErrCodeTakeFailed},
		{rclerrors.ErrTimerCanceled, ErrCodeTimerCanceled},
		{rclerrors.ErrMiddleware, ErrCodeMiddleware},
	}
	for _, tc := range cases {
		err := WrapError("Take", tc.inner)
		if err.Code != tc.want {
			t.Errorf("WrapError(%v).Code = %s, want %s", tc.inner, err.Code, tc.want)
		}
		if !errors.Is(err, tc.inner) {
			t.Errorf("expected wrapped error to satisfy errors.Is for %v", tc.inner)
		}
	}
}

func TestWrapErrorPreservesStructuredError(t *testing.T) {
	original := NewIndexError("Take", 2, ErrCodeTakeFailed, "no data")
	wrapped := WrapError("Execute", original)

	if wrapped.Index != 2 || wrapped.Code != ErrCodeTakeFailed {
		t.Errorf("expected wrapped error to preserve index/code, got %+v", wrapped)
	}
}

func TestWrapErrorNilReturnsNil(t *testing.T) {
	if err := WrapError("Take", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("Wait", ErrCodeTimerCanceled, "canceled")

	if !IsCode(err, ErrCodeTimerCanceled) {
		t.Error("IsCode should return true for matching code")
	}
	if IsCode(err, ErrCodeMiddleware) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, ErrCodeTimerCanceled) {
		t.Error("IsCode should return false for nil error")
	}
}

func TestErrorIsComparesByCode(t *testing.T) {
	a := &Error{Code: ErrCodeNotFound}
	b := NewError("Find", ErrCodeNotFound, "missing")

	if !errors.Is(b, a) {
		t.Error("expected errors with the same Code to satisfy errors.Is")
	}
}
