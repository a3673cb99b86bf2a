package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("dup", "qt_abc"), ErrorTypeConflict, http.StatusConflict},
		{"unauthorized", NewUnauthorizedError("no"), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), ErrorTypeForbidden, http.StatusForbidden},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
		{"bad request", NewBadRequestError("unreadable"), ErrorTypeBadRequest, http.StatusBadRequest},
		{"too many", NewTooManyRequestsError("slow down"), ErrorTypeTooManyRequests, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestAppError_ErrorIncludesDetails(t *testing.T) {
	err := NewConflictError("active ticket exists", "qt_abc")
	assert.Equal(t, "conflict: active ticket exists (qt_abc)", err.Error())
	assert.Equal(t, "not_found: gone", NewNotFoundError("gone").Error())
}

func TestErrorPredicates_UnwrapWrapped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewConflictError("dup"))

	assert.NotNil(t, GetAppError(wrapped))
	assert.True(t, IsConflictError(wrapped))
	assert.False(t, IsInternalError(wrapped))
	assert.False(t, IsForbiddenError(wrapped))
	assert.False(t, IsNotFoundError(wrapped))
	assert.False(t, IsValidationError(fmt.Errorf("plain")))
	assert.Nil(t, GetAppError(fmt.Errorf("plain")))
	assert.True(t, IsInternalError(fmt.Errorf("outer: %w", NewInternalError("boom"))))
}

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, IsDuplicateError(nil))
	assert.True(t, IsDuplicateError(fmt.Errorf("Error 1062: Duplicate entry 'p1|duel|eu' for key 'uk_active'")))
	assert.True(t, IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: queue_tickets.active_key")))
	assert.False(t, IsDuplicateError(fmt.Errorf("connection refused")))
}
