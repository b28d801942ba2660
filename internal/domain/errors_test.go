package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "query must not be empty")
	assert.Equal(t, "[VALIDATION_ERROR] query must not be empty", err.Error())

	cause := errors.New("connection refused")
	wrapped := NewDomainErrorWithCause(ErrCodeGeneration, "generation service call failed", cause)
	assert.Contains(t, wrapped.Error(), "GENERATION_ERROR")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewDomainErrorWithCause(ErrCodeRetrieval, "failed to embed query", cause)

	assert.ErrorIs(t, err, cause)
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(ErrDocumentNotFound, ErrCodeNotFound))
	assert.False(t, IsCode(ErrDocumentNotFound, ErrCodeValidation))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeNotFound))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}
