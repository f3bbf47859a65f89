package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "finman/internal/errors"
)

// AssertAppError fails the test unless err is an *AppError carrying the code
// and HTTP status of want. Custom messages and wrapped internals are ignored.
func AssertAppError(t *testing.T, err error, want *apperrors.AppError) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s, got nil", want.Code)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError %s, got %T: %v", want.Code, err, err)
	}

	if appErr.Code != want.Code {
		t.Errorf("expected error code %q, got %q (message: %s)", want.Code, appErr.Code, appErr.Message)
	}
	if appErr.StatusCode != want.StatusCode {
		t.Errorf("expected status %d for %s, got %d", want.StatusCode, want.Code, appErr.StatusCode)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertRowCount fails the test unless q matches want rows. q must be scoped
// with Model.
func AssertRowCount(t *testing.T, q *gorm.DB, want int64) {
	t.Helper()

	var got int64
	if err := q.Count(&got).Error; err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if got != want {
		t.Errorf("expected %d rows, got %d", want, got)
	}
}
