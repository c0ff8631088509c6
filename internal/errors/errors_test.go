package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := InvalidDate("month 13 out of range")

	assert.True(t, Is(err, ErrInvalidDate))
	assert.False(t, Is(err, ErrBackendUnavailable))

	wrapped := fmt.Errorf("render cell: %w", err)
	assert.True(t, Is(wrapped, ErrInvalidDate))
}

func TestError_WithCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := BackendUnavailable("fetch schedule", cause)

	assert.Equal(t, "fetch schedule: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrBackendUnavailable))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidDate, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeBackendUnavailable, http.StatusBadGateway},
		{CodeInvariantViolation, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("x: %w", NotFound("book"))))
	assert.Equal(t, CodeInternal, CodeOf(stderrors.New("plain")))
}
