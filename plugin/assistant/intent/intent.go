// Package intent turns a free-form chat message into a structured search
// intent. Resolution runs an ordered rule list so the precedence between
// matching strategies is explicit data rather than implicit code order.
package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/campusfinds/campusfinds/plugin/assistant/fuzzy"
	"github.com/campusfinds/campusfinds/plugin/assistant/vocab"
)

// SearchIntent is the structured result of interpreting one user message.
// It is produced once per message and never persisted.
type SearchIntent struct {
	Query             string
	Category          string
	Subcategory       string
	Campus            string
	SearchAllCampuses bool
	CorrectionNote    string
}

// campusScope carries the campus fields shared by every rule. It is computed
// once per message and merged into whichever rule produces the intent.
type campusScope struct {
	searchAllCampuses bool
	campus            string
}

// rule is one entry of the ordered resolution list. A rule returns nil when
// it does not apply; the first non-nil result wins.
type rule struct {
	name  string
	apply func(ex *Extractor, msg parsedMessage) *SearchIntent
}

// parsedMessage is the pre-tokenized view of the incoming message that every
// rule works from.
type parsedMessage struct {
	raw     string
	lowered string
	tokens  []string
	scope   campusScope
}

// Extractor resolves messages against the marketplace vocabulary.
type Extractor struct {
	maxDistance int
	rules       []rule
}

// NewExtractor returns an extractor using the default fuzzy-match threshold.
func NewExtractor() *Extractor {
	ex := &Extractor{maxDistance: fuzzy.DefaultMaxDistance}
	ex.rules = []rule{
		{"token-fuzzy", (*Extractor).matchTokens},
		{"synonym-phrase", (*Extractor).matchSynonymPhrase},
		{"search-verb", (*Extractor).matchSearchVerb},
		{"category-substring", (*Extractor).matchCategorySubstring},
	}
	return ex
}

var (
	allCampusPhrases = []string{
		"all campuses",
		"all campus",
		"all universities",
		"everywhere",
		"any campus",
		"other universities",
	}
	myCampusPhrases = []string{
		"my campus",
		"my university",
		"at my school",
	}

	atCampusRe = regexp.MustCompile(`(?i)\bat\s+([a-zA-Z][a-zA-Z0-9 .&'-]*[a-zA-Z0-9.])`)

	// stopwords are filler tokens that must never fuzzy-match a vocabulary
	// entry ("can" is one edit from "fan").
	stopwords = map[string]struct{}{
		"a": {}, "an": {}, "the": {}, "i": {}, "me": {}, "my": {},
		"you": {}, "your": {}, "we": {}, "it": {}, "is": {}, "are": {},
		"was": {}, "do": {}, "does": {}, "did": {}, "can": {}, "could": {},
		"would": {}, "should": {}, "have": {}, "has": {}, "need": {},
		"want": {}, "show": {}, "find": {}, "looking": {}, "for": {},
		"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "and": {},
		"or": {}, "any": {}, "some": {}, "what": {}, "where": {},
		"when": {}, "how": {}, "there": {}, "here": {}, "please": {},
		"around": {}, "near": {}, "with": {}, "sale": {}, "buy": {},
		"sell": {}, "get": {}, "hi": {}, "hello": {}, "hey": {},
		"thanks": {},
	}

	searchVerbRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bwhere can i find\s+(.+)`),
		regexp.MustCompile(`(?i)\blooking for\s+(.+)`),
		regexp.MustCompile(`(?i)\bfind\s+(?:me\s+)?(.+)`),
		regexp.MustCompile(`(?i)\bdo you have\s+(?:any\s+|a\s+|an\s+)?(.+)`),
		regexp.MustCompile(`(?i)\b([a-zA-Z0-9 '-]+?)\s+for sale\b`),
	}
)

// Extract interprets a message and returns the search intent, or nil when no
// rule applies. userUniversity, when known, resolves "at my university"
// phrasing to a concrete campus.
func (ex *Extractor) Extract(message, userUniversity string) *SearchIntent {
	lowered := strings.ToLower(message)
	msg := parsedMessage{
		raw:     message,
		lowered: lowered,
		tokens:  tokenize(message),
		scope:   detectCampusScope(message, lowered, userUniversity),
	}

	for _, r := range ex.rules {
		if intent := r.apply(ex, msg); intent != nil {
			intent.SearchAllCampuses = msg.scope.searchAllCampuses
			if intent.Campus == "" {
				intent.Campus = msg.scope.campus
			}
			return intent
		}
	}
	return nil
}

// CampusScope exposes the campus-scope detection on its own, for callers
// that need the scope without a full intent (e.g. "my listings at Stanford").
func (ex *Extractor) CampusScope(message, userUniversity string) (campus string, searchAllCampuses bool) {
	scope := detectCampusScope(message, strings.ToLower(message), userUniversity)
	return scope.campus, scope.searchAllCampuses
}

// detectCampusScope runs once per message, independent of the category
// rules. Searches span the entire marketplace unless the user narrows them.
func detectCampusScope(raw, lowered, userUniversity string) campusScope {
	scope := campusScope{searchAllCampuses: true}

	for _, phrase := range myCampusPhrases {
		if strings.Contains(lowered, phrase) {
			scope.searchAllCampuses = false
			if userUniversity != "" {
				scope.campus = userUniversity
			}
			break
		}
	}
	for _, phrase := range allCampusPhrases {
		if strings.Contains(lowered, phrase) {
			scope.searchAllCampuses = true
			scope.campus = ""
			return scope
		}
	}

	m := atCampusRe.FindStringSubmatch(raw)
	if m == nil {
		return scope
	}
	captured := strings.TrimSpace(m[1])
	if low := strings.ToLower(captured); strings.HasPrefix(low, "my ") || low == "my" {
		// "at my university" and friends are handled above.
		return scope
	}
	scope.campus = resolveCampusName(captured)
	scope.searchAllCampuses = false
	return scope
}

// resolveCampusName canonicalizes a captured campus name. Trailing words are
// dropped one at a time so "Stanford University please" still resolves; if
// nothing on the roster matches, the raw capture is kept as-is.
func resolveCampusName(captured string) string {
	words := strings.Fields(captured)
	for end := len(words); end > 0; end-- {
		candidate := strings.Join(words[:end], " ")
		if canonical, ok := vocab.CanonicalCampus(candidate); ok {
			return canonical
		}
	}
	return captured
}

// matchTokens is the first and strongest rule: fuzzy-match each whitespace
// token against the vocabulary, first hit wins. Candidate order per token is
// main categories, then subcategories, then item keywords.
func (ex *Extractor) matchTokens(msg parsedMessage) *SearchIntent {
	for _, token := range msg.tokens {
		if _, ok := stopwords[strings.ToLower(token)]; ok {
			continue
		}
		dist := distanceForToken(token, ex.maxDistance)
		if dist < 0 {
			continue
		}

		if cat, ok := fuzzy.Match(token, vocab.MainCategories, dist); ok {
			return &SearchIntent{
				Query:          cat,
				Category:       cat,
				CorrectionNote: correctionNote(token, cat),
			}
		}
		if sub, ok := fuzzy.Match(token, vocab.AllSubcategories(), dist); ok {
			owner, _ := vocab.OwningCategory(sub)
			return &SearchIntent{
				Query:          sub,
				Category:       owner,
				Subcategory:    sub,
				CorrectionNote: correctionNote(token, sub),
			}
		}
		if keyword, ok := fuzzy.Match(token, vocab.Keywords(), dist); ok {
			pair, _ := vocab.KeywordPair(keyword)
			return &SearchIntent{
				Query:          keyword,
				Category:       pair.Category,
				Subcategory:    pair.Subcategory,
				CorrectionNote: correctionNote(token, keyword),
			}
		}
	}
	return nil
}

// distanceForToken scales the fuzzy threshold to token length. Short tokens
// get a tighter budget so filler words like "show" cannot drift into
// vocabulary entries two edits away. Tokens under three runes are skipped.
func distanceForToken(token string, maxDistance int) int {
	switch n := len([]rune(token)); {
	case n < 3:
		return -1
	case n <= 4:
		return min(1, maxDistance)
	default:
		return maxDistance
	}
}

// correctionNote reports a spelling fix to the user. Case-only differences
// are not corrections worth surfacing.
func correctionNote(token, matched string) string {
	if strings.EqualFold(token, matched) {
		return ""
	}
	return fmt.Sprintf("Corrected %q to %q.", token, matched)
}

func (ex *Extractor) matchSynonymPhrase(msg parsedMessage) *SearchIntent {
	for _, syn := range vocab.SynonymPhrases {
		if strings.Contains(msg.lowered, syn.Phrase) {
			return &SearchIntent{
				Query:       syn.Phrase,
				Category:    syn.Pair.Category,
				Subcategory: syn.Pair.Subcategory,
			}
		}
	}
	return nil
}

// matchSearchVerb handles explicit search phrasing ("looking for X",
// "find X", "X for sale", ...). The extracted object is re-checked against
// the vocabulary so "looking for housing" still carries a category.
func (ex *Extractor) matchSearchVerb(msg parsedMessage) *SearchIntent {
	for _, re := range searchVerbRes {
		m := re.FindStringSubmatch(msg.raw)
		if m == nil {
			continue
		}
		query := cleanQuery(m[1])
		if query == "" {
			continue
		}

		intent := &SearchIntent{Query: query}
		lowQuery := strings.ToLower(query)
		if cat, sub, ok := categoryFromText(lowQuery); ok {
			intent.Category = cat
			intent.Subcategory = sub
		}
		return intent
	}
	return nil
}

// matchCategorySubstring is the last resort: a category or subcategory name
// appearing anywhere in the message, which also covers multi-word names that
// tokenization splits apart.
func (ex *Extractor) matchCategorySubstring(msg parsedMessage) *SearchIntent {
	for _, cat := range vocab.MainCategories {
		if strings.Contains(msg.lowered, strings.ToLower(cat)) {
			return &SearchIntent{Query: cat, Category: cat}
		}
	}
	for _, sub := range vocab.AllSubcategories() {
		if strings.Contains(msg.lowered, strings.ToLower(sub)) {
			owner, _ := vocab.OwningCategory(sub)
			return &SearchIntent{Query: sub, Category: owner, Subcategory: sub}
		}
	}
	return nil
}

// categoryFromText maps extracted search text onto the taxonomy via exact
// substring containment, trying categories, then subcategories, then synonym
// phrases.
func categoryFromText(lowered string) (category, subcategory string, ok bool) {
	for _, cat := range vocab.MainCategories {
		if strings.Contains(lowered, strings.ToLower(cat)) {
			return cat, "", true
		}
	}
	for _, sub := range vocab.AllSubcategories() {
		if strings.Contains(lowered, strings.ToLower(sub)) {
			owner, _ := vocab.OwningCategory(sub)
			return owner, sub, true
		}
	}
	for _, syn := range vocab.SynonymPhrases {
		if strings.Contains(lowered, syn.Phrase) {
			return syn.Pair.Category, syn.Pair.Subcategory, true
		}
	}
	return "", "", false
}

// tokenize splits on whitespace and strips surrounding punctuation from each
// token.
func tokenize(message string) []string {
	fields := strings.Fields(message)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.Trim(f, ".,!?;:\"'()")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// cleanQuery normalizes the object extracted by a search-verb pattern.
func cleanQuery(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ".,!?;:\"'")
	for _, article := range []string{"a ", "an ", "the ", "some "} {
		if strings.HasPrefix(strings.ToLower(s), article) {
			s = s[len(article):]
			break
		}
	}
	return strings.TrimSpace(s)
}
