package common

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidationRules(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		rule    ValidationRule
		wantMsg string
	}{
		{"required ok", "abc", Required, ""},
		{"required blank", "   ", Required, "is required"},
		{"required nil", nil, Required, "is required"},
		{"max length ok", "héllo", MaxLengthRule(5), ""},
		{"max length exceeded", "héllo!", MaxLengthRule(5), "must be at most 5 characters"},
		{"max length ignores non-strings", 42, MaxLengthRule(1), ""},
		{"uuid ok", uuid.NewString(), UUID, ""},
		{"uuid bad", "not-a-uuid", UUID, "must be a valid UUID"},
		{"uuid not a string", 7, UUID, "must be a string"},
		{"date empty", "", DateString, ""},
		{"date ok", "2024-01-15", DateString, ""},
		{"date wrong layout", "01/15/2024", DateString, "must be a date in YYYY-MM-DD format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule("f", tt.value)
			if tt.wantMsg == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, "f", err.Field)
			assert.Equal(t, tt.wantMsg, err.Message)
		})
	}
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := NewValidator().
		Field("id", "", Required, UUID).
		Field("source", strings.Repeat("x", 10), MaxLengthRule(4)).
		Field("from_date", "2024-01-15", DateString)

	require.Len(t, v.Errors(), 3)
	assert.Contains(t, v.ErrorMessage(), "field 'source'")

	err := ValidateAndReturnError(v)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.NoError(t, ValidateAndReturnError(NewValidator().Field("id", uuid.NewString(), Required, UUID)))
}
