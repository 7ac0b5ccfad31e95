package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(ErrCodeUnauthorized, "bad token"))

	assert.True(t, stderrors.Is(err, New(ErrCodeUnauthorized, "")))
	assert.False(t, stderrors.Is(err, New(ErrCodeWindowClosed, "")))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStoreError("list prizes", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeStoreUnavailable, err.Code)
	assert.Equal(t, "list prizes", err.Details["operation"])
	assert.True(t, err.Retryable())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("boom")))
	assert.Equal(t, ErrCodeNoPrizes, CodeOf(fmt.Errorf("x: %w", New(ErrCodeNoPrizes, "none"))))
}

func TestAppError_HTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeUnauthorized:     http.StatusUnauthorized,
		ErrCodeWindowClosed:     http.StatusConflict,
		ErrCodeNoPrizes:         http.StatusUnprocessableEntity,
		ErrCodeNotRegistered:    http.StatusForbidden,
		ErrCodeDoorNotYetOpen:   http.StatusTooEarly,
		ErrCodeConflict:         http.StatusConflict,
		ErrCodeStoreUnavailable: http.StatusServiceUnavailable,
		ErrCodeInvalidDoor:      http.StatusBadRequest,
		ErrorCode("SOMETHING"):  http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "").HTTPStatus(), code)
	}
}
