package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Secret123!", true},
		{"Aa1@aaaa", true},
		{"Aa1@aaa", false},     // too short
		{"secret123!", false},  // no uppercase
		{"SECRET123!", false},  // no lowercase
		{"SecretABC!", false},  // no digit
		{"Secret1234", false},  // no special
		{"Secret 123!", false}, // space not allowed
		{"Sécret123!", false},  // non-ascii
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidPassword(tt.password), "password %q", tt.password)
	}
}

func TestGenerateOTP(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, pattern, otp)
		seen[otp] = true
	}
	assert.Greater(t, len(seen), 1, "codes should vary")
}
