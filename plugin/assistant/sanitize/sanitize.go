// Package sanitize post-processes generated text before it reaches the
// user. Sanitize is idempotent: running an already-sanitized string through
// again returns it unchanged.
package sanitize

import "strings"

// MaxReplyLength bounds a sanitized reply, ellipsis included.
const MaxReplyLength = 1500

// RefusalMessage replaces any generated text that trips the denylist. It
// must never itself contain a denylist term.
const RefusalMessage = "I can't help with that topic. I don't discuss login " +
	"credentials, payment card numbers, or other personal identifiers. " +
	"I'm happy to help you search listings, browse categories, or manage " +
	"your posts instead."

// denylist holds the sensitive-topic patterns, matched case-insensitively
// as substrings.
var denylist = []string{
	"password",
	"credit card",
	"ssn",
	"social security",
	"api key",
}

// Sanitize applies, in order: whitespace trim, hard truncation to
// MaxReplyLength, and a denylist scan that replaces the whole text with
// RefusalMessage on any hit.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)

	if runes := []rune(text); len(runes) > MaxReplyLength {
		text = string(runes[:MaxReplyLength-3]) + "..."
	}

	if ContainsSensitive(text) {
		return RefusalMessage
	}
	return text
}

// ContainsSensitive reports whether text mentions a denylisted topic.
func ContainsSensitive(text string) bool {
	lowered := strings.ToLower(text)
	for _, pattern := range denylist {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
