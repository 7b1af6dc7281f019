package mcperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredError_Error(t *testing.T) {
	err := NewInvalidInput("Total units must be a positive number.")
	assert.Contains(t, err.Error(), "INVALID_INPUT")
	assert.Contains(t, err.Error(), "CLIENT_ERROR")
	assert.Contains(t, err.Error(), "Total units must be a positive number.")
}

func TestToJSON(t *testing.T) {
	err := NewNotFound("Action item", "abc-123").WithDetails(map[string]string{"field": "action_id"})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(err.ToJSON()), &decoded))

	assert.Equal(t, "RESOURCE_NOT_FOUND", decoded["code"])
	assert.Equal(t, "CLIENT_ERROR", decoded["category"])
	assert.Contains(t, decoded["message"], "abc-123")
	assert.NotEmpty(t, decoded["suggestion"])
	assert.NotNil(t, decoded["details"])
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		code     ErrorCode
		category ErrorCategory
	}{
		{"invalid input", NewInvalidInput("bad"), CodeInvalidInput, ClientError},
		{"formatted invalid input", NewInvalidInputf("bad %d", 7), CodeInvalidInput, ClientError},
		{"missing parameter", NewMissingParameter("total_units"), CodeMissingParameter, ClientError},
		{"not found", NewNotFound("Action item", "x"), CodeResourceNotFound, ClientError},
		{"config error", NewConfigError("bad catalog"), CodeConfigError, ExternalError},
		{"parse error", NewParseError("bad timestamp"), CodeParseError, ClientError},
		{"internal error", NewInternalError("boom"), CodeInternalError, ServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.category, tt.err.Category)
			assert.NotEmpty(t, tt.err.Suggestion)
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInvalidInput, CodeOf(NewInvalidInput("x")))
	assert.Equal(t, CodeInternalError, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", NewParseError("x"))
	assert.Equal(t, CodeParseError, CodeOf(wrapped))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsValidation(NewInvalidInput("x")))
	assert.True(t, IsValidation(NewMissingParameter("x")))
	assert.False(t, IsValidation(NewNotFound("Item", "x")))

	assert.True(t, IsNotFound(NewNotFound("Item", "x")))
	assert.False(t, IsNotFound(NewInvalidInput("x")))
}
