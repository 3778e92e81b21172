package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInstanceID(t *testing.T) {
	t.Run("valid shapes", func(t *testing.T) {
		for _, token := range []string{
			"i-12345678",
			"i-0df9c53001c5c837d",
			"i-abcdef01",
			"i-00000000000000000",
		} {
			assert.True(t, IsInstanceID(token), "token %q", token)
		}
	})

	t.Run("invalid shapes", func(t *testing.T) {
		for _, token := range []string{
			"",
			"i-",
			"i-1234567",            // too short
			"i-123456789",          // between the two valid lengths
			"i-0df9c53001c5c837dd", // too long
			"i-ABCDEF01",           // uppercase hex
			"i-1234567g",           // non-hex
			"j-12345678",
			"i-12345678 ",
			"my-instance",
		} {
			assert.False(t, IsInstanceID(token), "token %q", token)
		}
	})
}

func TestDisplayName(t *testing.T) {
	named := &Instance{ID: "i-12345678", Name: "web-1"}
	assert.Equal(t, "web-1", named.DisplayName())

	unnamed := &Instance{ID: "i-12345678"}
	assert.Equal(t, "i-12345678", unnamed.DisplayName())
}
