// Package fuzzy implements bounded edit-distance matching against small
// vocabularies. Vocabularies stay under ~60 strings, so the O(n*m) scan per
// candidate is fine.
package fuzzy

import (
	"strings"
)

// DefaultMaxDistance is the edit-distance threshold used by intent extraction.
const DefaultMaxDistance = 2

// Match returns the candidate closest to word by edit distance, provided the
// distance is at most maxDistance. Comparison is case-insensitive. Ties break
// to the first-encountered candidate, so results are deterministic for a
// stable candidate ordering.
func Match(word string, candidates []string, maxDistance int) (string, bool) {
	if maxDistance < 0 {
		return "", false
	}

	lower := strings.ToLower(word)
	best := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		d := Distance(lower, strings.ToLower(candidate))
		if d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}

	if bestDistance > maxDistance {
		return "", false
	}
	return best, true
}

// Distance computes the Levenshtein distance between a and b with unit-cost
// insert, delete and substitute operations.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // delete
				curr[j-1]+1,    // insert
				prev[j-1]+cost, // substitute
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
