package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeExternal, "encoder failed", baseErr)

	assert.Equal(t, ErrorTypeExternal, domainErr.Type)
	assert.Equal(t, "encoder failed", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeExternal,
				Message: "context encoder failed",
				Err:     errors.New("connection refused"),
			},
			wantMsg: "external: context encoder failed (connection refused)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeValidation, "history 2 is empty", nil),
			target: ErrEmptyHistory,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeInternal, "boom", nil),
			target: ErrEmptyHistory,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeValidation, "bad", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "length mismatch", nil)
	err.WithDetail("histories", 2).WithDetail("topics", 1)

	assert.Equal(t, 2, err.Details["histories"])
	assert.Equal(t, 1, err.Details["topics"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		validation  bool
		internal    bool
		external    bool
		unavailable bool
	}{
		{name: "validation", err: ErrLengthMismatch, validation: true},
		{name: "wrapped validation", err: fmt.Errorf("wrapped: %w", ErrEmptyBatch), validation: true},
		{name: "internal", err: ErrInternal, internal: true},
		{name: "external", err: WrapExternal("encode", errors.New("timeout")), external: true},
		{name: "unavailable", err: ErrResourcesNotLoaded, unavailable: true},
		{name: "regular error", err: errors.New("regular")},
		{name: "nil error", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.internal, IsInternalError(tt.err))
			assert.Equal(t, tt.external, IsExternalError(tt.err))
			assert.Equal(t, tt.unavailable, IsUnavailableError(tt.err))
			assert.False(t, IsNotFoundError(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, GetErrorType(ErrEmptyHistory))
	assert.Equal(t, ErrorTypeExternal, GetErrorType(ErrEncoderFailed))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("regular")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)
	err.WithDetail("field", "utterances_histories")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "utterances_histories", details["field"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestWrapInternal(t *testing.T) {
	baseErr := errors.New("index corrupted")
	wrapped := WrapInternal("failed to rank", baseErr)

	assert.True(t, IsInternalError(wrapped))
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}
