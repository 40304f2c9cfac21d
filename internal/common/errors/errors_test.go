package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeSearchQueryFailed, http.StatusBadGateway},
		{ErrCodeQueryExecutionFailed, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	retryable := NewNotificationSendFailedError("email", fmt.Errorf("throttled"))
	bpmn := ConvertToBPMNError(retryable)
	assert.Equal(t, string(ErrCodeNotificationSendFailed), bpmn.Code)
	assert.Equal(t, 3, bpmn.Retries)
	assert.True(t, bpmn.Retryable)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "NOTIFICATION_SEND_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "Notification delivery failed", vars["errorMessage"])

	permanent := NewInvalidInputError("leadId is required")
	assert.Equal(t, 0, ConvertToBPMNError(permanent).Retries)
}

func TestAsStandardError_Wrapped(t *testing.T) {
	base := NewResourceNotFoundError("news", "42")
	wrapped := fmt.Errorf("handler: %w", base)

	got, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, got.Code)

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestNormalize_PlainError(t *testing.T) {
	got := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "boom", got.Details)
	assert.False(t, got.Retryable)
}

func TestUnwrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDatabaseConnectionFailedError(cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeForbidden))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "INTEGRATION", GetErrorCategory(ErrCodeCRMSyncFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "RESOURCE", GetErrorCategory(ErrCodeLeadNotFound))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheOperationFailed))
}

func TestWithMetadata(t *testing.T) {
	err := NewValidationError("bad").WithMetadata("field", "pan")
	assert.Equal(t, "pan", err.Metadata["field"])
}
