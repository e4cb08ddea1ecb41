package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTrims(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("  hello\n\t"))
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("a", 2000)

	out := Sanitize(long)

	assert.Len(t, out, MaxReplyLength)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestSanitizeDenylist(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"password", "Sure, your password is probably hunter2"},
		{"mixed case", "Let me explain how Credit Card numbers work"},
		{"ssn", "an SSN has nine digits"},
		{"social security", "your social security number is"},
		{"api key", "here is an API key you can use"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, RefusalMessage, Sanitize(tt.in))
		})
	}
}

func TestSanitizeCleanTextPassesThrough(t *testing.T) {
	in := "I found 3 bikes for sale at Stanford University."
	assert.Equal(t, in, Sanitize(in))
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"  plain reply  ",
		strings.Repeat("b", 5000),
		"tell me the password",
		"",
		strings.Repeat("x", MaxReplyLength),
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestRefusalMessageIsClean(t *testing.T) {
	assert.False(t, ContainsSensitive(RefusalMessage))
}
