package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeyword(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("laptop", "")
	require.NotNil(t, intent)
	assert.Equal(t, "For Sale", intent.Category)
	assert.Equal(t, "Electronics", intent.Subcategory)
	assert.Empty(t, intent.CorrectionNote)
	assert.True(t, intent.SearchAllCampuses)
}

func TestExtractMisspelledKeyword(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("laptp", "")
	require.NotNil(t, intent)
	assert.Equal(t, "For Sale", intent.Category)
	assert.Equal(t, "Electronics", intent.Subcategory)
	assert.Equal(t, `Corrected "laptp" to "laptop".`, intent.CorrectionNote)
}

func TestExtractCaseDifferenceIsNotACorrection(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("HOUSING", "")
	require.NotNil(t, intent)
	assert.Equal(t, "Housing", intent.Category)
	assert.Empty(t, intent.CorrectionNote)
}

func TestExtractCategoryWithCampus(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("show me housing options at Stanford University", "")
	require.NotNil(t, intent)
	assert.Equal(t, "Housing", intent.Category)
	assert.Equal(t, "Stanford University", intent.Campus)
}

func TestExtractCampusCanonicalization(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("bikes at uc berkeley", "")
	require.NotNil(t, intent)
	assert.Equal(t, "For Sale", intent.Category)
	assert.Equal(t, "Sports", intent.Subcategory)
	assert.Equal(t, "UC Berkeley", intent.Campus)
}

func TestExtractCampusTrailingWordsDropped(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("show me housing at Stanford University please", "")
	require.NotNil(t, intent)
	assert.Equal(t, "Housing", intent.Category)
	assert.Equal(t, "Stanford University", intent.Campus)
}

func TestExtractUnknownCampusKeptRaw(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("furniture at Oakwood College", "")
	require.NotNil(t, intent)
	assert.Equal(t, "Oakwood College", intent.Campus)
	assert.False(t, intent.SearchAllCampuses)
}

func TestExtractCampusScopePhrases(t *testing.T) {
	ex := NewExtractor()

	tests := []struct {
		name       string
		message    string
		university string
		allCampus  bool
		campus     string
	}{
		{
			name:      "all campuses",
			message:   "textbooks at all campuses",
			allCampus: true,
		},
		{
			name:      "everywhere",
			message:   "find bikes everywhere",
			allCampus: true,
		},
		{
			name:       "my campus with known university",
			message:    "laptops on my campus",
			university: "Stanford University",
			allCampus:  false,
			campus:     "Stanford University",
		},
		{
			name:       "at my university resolves to home campus",
			message:    "any sublets at my university",
			university: "UC Berkeley",
			allCampus:  false,
			campus:     "UC Berkeley",
		},
		{
			name:      "my campus without known university",
			message:   "laptops on my campus",
			allCampus: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := ex.Extract(tt.message, tt.university)
			require.NotNil(t, intent)
			assert.Equal(t, tt.allCampus, intent.SearchAllCampuses)
			assert.Equal(t, tt.campus, intent.Campus)
		})
	}
}

func TestExtractSynonymPhrase(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("I need a place to live next semester", "")
	require.NotNil(t, intent)
	assert.Equal(t, "place to live", intent.Query)
	assert.Equal(t, "Housing", intent.Category)
}

func TestExtractSearchVerbPatterns(t *testing.T) {
	ex := NewExtractor()

	tests := []struct {
		name     string
		message  string
		query    string
		category string
	}{
		{
			name:    "looking for",
			message: "looking for a cheap calculator",
			query:   "cheap calculator",
		},
		{
			name:     "where can i find",
			message:  "where can I find free stuff",
			query:    "free stuff",
			category: "Community",
		},
		{
			name:    "do you have",
			message: "do you have any winter gloves",
			query:   "winter gloves",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := ex.Extract(tt.message, "")
			require.NotNil(t, intent)
			assert.Equal(t, tt.query, intent.Query)
			assert.Equal(t, tt.category, intent.Category)
		})
	}
}

func TestExtractTokenRuleWinsOverSearchVerb(t *testing.T) {
	ex := NewExtractor()

	// "couch" is a vocabulary keyword, so the token rule fires before the
	// "looking for" pattern ever runs.
	intent := ex.Extract("looking for a couch", "")
	require.NotNil(t, intent)
	assert.Equal(t, "couch", intent.Query)
	assert.Equal(t, "For Sale", intent.Category)
	assert.Equal(t, "Furniture", intent.Subcategory)
}

func TestExtractSubcategoryResolvesOwner(t *testing.T) {
	ex := NewExtractor()

	intent := ex.Extract("any sublets around?", "")
	require.NotNil(t, intent)
	assert.Equal(t, "Housing", intent.Category)
	assert.Equal(t, "Sublets", intent.Subcategory)
}

func TestExtractNoMatch(t *testing.T) {
	ex := NewExtractor()

	assert.Nil(t, ex.Extract("how does this work", ""))
	assert.Nil(t, ex.Extract("", ""))
}

func TestExtractShortFillerWordsDoNotDrift(t *testing.T) {
	ex := NewExtractor()

	// "show" is two edits from "shoes" but short tokens get a tighter
	// budget, so the message resolves on "housing" instead.
	intent := ex.Extract("show me housing", "")
	require.NotNil(t, intent)
	assert.Equal(t, "Housing", intent.Category)
	assert.Empty(t, intent.Subcategory)
}
