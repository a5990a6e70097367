package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := NewPhoneValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain local form", "09171234567", "09171234567", nil},
		{"with spaces", "0917 123 4567", "09171234567", nil},
		{"with dashes", "0917-123-4567", "09171234567", nil},
		{"e164 form", "+639171234567", "09171234567", nil},
		{"country code without plus", "639171234567", "09171234567", nil},
		{"empty", "", "", ErrEmptyPhone},
		{"letters", "09171abc567", "", ErrInvalidFormat},
		{"too short", "0917123456", "", ErrInvalidLength},
		{"too long", "091712345678", "", ErrInvalidLength},
		{"landline prefix", "02171234567", "", ErrInvalidPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToE164(t *testing.T) {
	v := NewPhoneValidator()

	got, err := v.ToE164("09171234567")
	require.NoError(t, err)
	assert.Equal(t, "+639171234567", got)

	// Already in E.164 form round-trips
	got, err = v.ToE164("+639171234567")
	require.NoError(t, err)
	assert.Equal(t, "+639171234567", got)

	_, err = v.ToE164("12345")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	v := NewPhoneValidator()

	got, err := v.Format("09171234567")
	require.NoError(t, err)
	assert.Equal(t, "0917 123 4567", got)

	_, err = v.Format("bad")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	v := NewPhoneValidator()

	assert.True(t, v.IsValid("09171234567"))
	assert.True(t, v.IsValid("+639171234567"))
	assert.False(t, v.IsValid(""))
	assert.False(t, v.IsValid("09171"))
}
