package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"laptop", "laptop", 0},
		{"laptp", "laptop", 1},
		{"latop", "laptop", 1},
		{"lptp", "laptop", 2},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"bike", "bikes", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a), "distance is symmetric")
		})
	}
}

func TestMatch(t *testing.T) {
	candidates := []string{"Electronics", "Furniture", "Clothing", "Books", "Sports"}

	tests := []struct {
		name        string
		word        string
		maxDistance int
		expected    string
		shouldMatch bool
	}{
		{
			name:        "exact match ignoring case",
			word:        "electronics",
			maxDistance: 2,
			expected:    "Electronics",
			shouldMatch: true,
		},
		{
			name:        "single deletion",
			word:        "electroncs",
			maxDistance: 2,
			expected:    "Electronics",
			shouldMatch: true,
		},
		{
			name:        "two edits",
			word:        "furnture",
			maxDistance: 2,
			expected:    "Furniture",
			shouldMatch: true,
		},
		{
			name:        "beyond threshold",
			word:        "bicycle",
			maxDistance: 2,
			shouldMatch: false,
		},
		{
			name:        "negative threshold never matches",
			word:        "Books",
			maxDistance: -1,
			shouldMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.word, candidates, tt.maxDistance)
			assert.Equal(t, tt.shouldMatch, ok)
			if tt.shouldMatch {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

// Match must return the minimum-distance candidate, not just any candidate
// under the threshold.
func TestMatchPrefersMinimumDistance(t *testing.T) {
	candidates := []string{"boots", "books", "book"}

	got, ok := Match("bok", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "book", got, "distance 1 beats distance 2")
}

func TestMatchTieBreaksToFirstCandidate(t *testing.T) {
	candidates := []string{"cart", "card"}

	got, ok := Match("care", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "cart", got, "both at distance 1, first candidate wins")
}
