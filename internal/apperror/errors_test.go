package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		wantCode int
	}{
		{"unauthenticated", Unauthenticated("login required"), ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", Forbidden("students only"), ErrForbidden, http.StatusForbidden},
		{"not found", NotFound("exam %d not found", 4), ErrNotFound, http.StatusNotFound},
		{"validation", Validation("bad body", FieldError{Field: "answers", Error: "required"}), ErrValidation, http.StatusBadRequest},
		{"conflict", Conflict("already completed"), ErrConflict, http.StatusConflict},
		{"unavailable", Unavailable("llm disabled", nil), ErrUnavailable, http.StatusServiceUnavailable},
		{"internal", Internal("db down", errors.New("dial tcp")), ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.wantCode, From(wrapped).StatusCode())
		})
	}
}

func TestFromPlainError(t *testing.T) {
	cause := errors.New("boom")
	appErr := From(cause)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.ErrorIs(t, appErr, cause)
	assert.NotErrorIs(t, NotFound("x"), ErrConflict)
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("exam %d not found", 7)
	assert.Equal(t, "exam 7 not found", err.Error())
}
