// Package vocab holds the marketplace vocabulary: the category taxonomy,
// item-keyword mappings, synonym phrases, and the campus roster. All lookup
// helpers are deterministic so intent extraction stays reproducible across
// runs.
package vocab

import (
	"sort"
	"strings"
)

// MainCategories is the top-level marketplace taxonomy, in display order.
var MainCategories = []string{
	"For Sale",
	"Housing",
	"Jobs",
	"Services",
	"Events",
	"Community",
}

// SubcategoriesByCategory maps each main category to its subcategories,
// in display order.
var SubcategoriesByCategory = map[string][]string{
	"For Sale": {
		"Electronics",
		"Furniture",
		"Clothing",
		"Books",
		"Sports",
		"Appliances",
		"Other",
	},
	"Housing": {
		"Apartments",
		"Sublets",
		"Roommates",
		"Dorm Swaps",
	},
	"Jobs": {
		"Part-Time",
		"Internships",
		"Tutoring",
		"Research",
	},
	"Services": {
		"Moving",
		"Repairs",
		"Lessons",
		"Rideshare",
	},
	"Events": {
		"Tickets",
		"Club Events",
	},
	"Community": {
		"Lost & Found",
		"Free Stuff",
	},
}

// CategoryPair ties a main category to one of its subcategories.
type CategoryPair struct {
	Category    string
	Subcategory string
}

// keywordToPair maps common item words to the category pair they imply.
// Keys are lowercase single tokens.
var keywordToPair = map[string]CategoryPair{
	"laptop":     {"For Sale", "Electronics"},
	"laptops":    {"For Sale", "Electronics"},
	"computer":   {"For Sale", "Electronics"},
	"computers":  {"For Sale", "Electronics"},
	"phone":      {"For Sale", "Electronics"},
	"phones":     {"For Sale", "Electronics"},
	"iphone":     {"For Sale", "Electronics"},
	"macbook":    {"For Sale", "Electronics"},
	"monitor":    {"For Sale", "Electronics"},
	"headphones": {"For Sale", "Electronics"},
	"tablet":     {"For Sale", "Electronics"},
	"ipad":       {"For Sale", "Electronics"},
	"camera":     {"For Sale", "Electronics"},
	"console":    {"For Sale", "Electronics"},
	"tv":         {"For Sale", "Electronics"},

	"couch":     {"For Sale", "Furniture"},
	"sofa":      {"For Sale", "Furniture"},
	"desk":      {"For Sale", "Furniture"},
	"chair":     {"For Sale", "Furniture"},
	"table":     {"For Sale", "Furniture"},
	"dresser":   {"For Sale", "Furniture"},
	"mattress":  {"For Sale", "Furniture"},
	"bookshelf": {"For Sale", "Furniture"},
	"futon":     {"For Sale", "Furniture"},
	"lamp":      {"For Sale", "Furniture"},

	"jacket":  {"For Sale", "Clothing"},
	"shoes":   {"For Sale", "Clothing"},
	"hoodie":  {"For Sale", "Clothing"},
	"sweater": {"For Sale", "Clothing"},
	"jeans":   {"For Sale", "Clothing"},
	"coat":    {"For Sale", "Clothing"},

	"textbook":  {"For Sale", "Books"},
	"textbooks": {"For Sale", "Books"},
	"book":      {"For Sale", "Books"},
	"books":     {"For Sale", "Books"},
	"novel":     {"For Sale", "Books"},

	"bike":       {"For Sale", "Sports"},
	"bikes":      {"For Sale", "Sports"},
	"bicycle":    {"For Sale", "Sports"},
	"bicycles":   {"For Sale", "Sports"},
	"skateboard": {"For Sale", "Sports"},
	"scooter":    {"For Sale", "Sports"},
	"skis":       {"For Sale", "Sports"},
	"snowboard":  {"For Sale", "Sports"},
	"surfboard":  {"For Sale", "Sports"},
	"dumbbells":  {"For Sale", "Sports"},
	"weights":    {"For Sale", "Sports"},

	"microwave":    {"For Sale", "Appliances"},
	"fridge":       {"For Sale", "Appliances"},
	"refrigerator": {"For Sale", "Appliances"},
	"blender":      {"For Sale", "Appliances"},
	"toaster":      {"For Sale", "Appliances"},
	"kettle":       {"For Sale", "Appliances"},
	"fan":          {"For Sale", "Appliances"},
	"heater":       {"For Sale", "Appliances"},

	"apartment":  {"Housing", "Apartments"},
	"apartments": {"Housing", "Apartments"},
	"studio":     {"Housing", "Apartments"},
	"sublet":     {"Housing", "Sublets"},
	"sublets":    {"Housing", "Sublets"},
	"sublease":   {"Housing", "Sublets"},
	"roommate":   {"Housing", "Roommates"},
	"roommates":  {"Housing", "Roommates"},

	"internship":  {"Jobs", "Internships"},
	"internships": {"Jobs", "Internships"},
	"tutor":       {"Jobs", "Tutoring"},
	"tutoring":    {"Jobs", "Tutoring"},

	"mover":     {"Services", "Moving"},
	"movers":    {"Services", "Moving"},
	"repair":    {"Services", "Repairs"},
	"repairs":   {"Services", "Repairs"},
	"ride":      {"Services", "Rideshare"},
	"rideshare": {"Services", "Rideshare"},
	"carpool":   {"Services", "Rideshare"},

	"ticket":  {"Events", "Tickets"},
	"tickets": {"Events", "Tickets"},
}

// SynonymPhrase maps a multi-word phrase to a category pair. Phrases are
// checked in slice order so longer, more specific phrases must come first.
type SynonymPhrase struct {
	Phrase string
	Pair   CategoryPair
}

// SynonymPhrases is the ordered phrase table for containment matching.
// All phrases are lowercase.
var SynonymPhrases = []SynonymPhrase{
	{"place to live", CategoryPair{"Housing", ""}},
	{"place to stay", CategoryPair{"Housing", ""}},
	{"somewhere to live", CategoryPair{"Housing", ""}},
	{"room for rent", CategoryPair{"Housing", ""}},
	{"looking for housing", CategoryPair{"Housing", ""}},
	{"part time job", CategoryPair{"Jobs", "Part-Time"}},
	{"part-time job", CategoryPair{"Jobs", "Part-Time"}},
	{"part time work", CategoryPair{"Jobs", "Part-Time"}},
	{"summer job", CategoryPair{"Jobs", ""}},
	{"campus job", CategoryPair{"Jobs", ""}},
	{"research position", CategoryPair{"Jobs", "Research"}},
	{"research assistant", CategoryPair{"Jobs", "Research"}},
	{"help moving", CategoryPair{"Services", "Moving"}},
	{"moving help", CategoryPair{"Services", "Moving"}},
	{"ride share", CategoryPair{"Services", "Rideshare"}},
	{"free stuff", CategoryPair{"Community", "Free Stuff"}},
	{"free things", CategoryPair{"Community", "Free Stuff"}},
	{"lost and found", CategoryPair{"Community", "Lost & Found"}},
	{"lost my", CategoryPair{"Community", "Lost & Found"}},
	{"found a", CategoryPair{"Community", "Lost & Found"}},
	{"game tickets", CategoryPair{"Events", "Tickets"}},
	{"concert tickets", CategoryPair{"Events", "Tickets"}},
}

// Campuses is the roster of known campus names in canonical form.
var Campuses = []string{
	"Stanford University",
	"UC Berkeley",
	"UCLA",
	"USC",
	"UC San Diego",
	"UC Davis",
	"San Jose State",
	"Santa Clara University",
	"Cal Poly",
	"NYU",
	"Columbia University",
	"Boston University",
	"MIT",
	"Harvard University",
	"University of Washington",
	"University of Texas",
	"University of Michigan",
}

// sortedKeywords is computed once so keyword iteration order is stable.
var sortedKeywords []string

func init() {
	sortedKeywords = make([]string, 0, len(keywordToPair))
	for k := range keywordToPair {
		sortedKeywords = append(sortedKeywords, k)
	}
	sort.Strings(sortedKeywords)
}

// Keywords returns the item keywords in stable sorted order.
func Keywords() []string {
	return sortedKeywords
}

// KeywordPair returns the category pair implied by an item keyword.
func KeywordPair(keyword string) (CategoryPair, bool) {
	pair, ok := keywordToPair[strings.ToLower(keyword)]
	return pair, ok
}

// OwningCategory returns the main category that owns the given subcategory.
// Matching ignores case.
func OwningCategory(subcategory string) (string, bool) {
	for _, cat := range MainCategories {
		for _, sub := range SubcategoriesByCategory[cat] {
			if strings.EqualFold(sub, subcategory) {
				return cat, true
			}
		}
	}
	return "", false
}

// AllSubcategories returns every subcategory in taxonomy order, flattened
// by main-category display order.
func AllSubcategories() []string {
	var subs []string
	for _, cat := range MainCategories {
		subs = append(subs, SubcategoriesByCategory[cat]...)
	}
	return subs
}

// IsMainCategory reports whether name is a main category, ignoring case.
// The canonical spelling is returned when it is.
func IsMainCategory(name string) (string, bool) {
	for _, cat := range MainCategories {
		if strings.EqualFold(cat, name) {
			return cat, true
		}
	}
	return "", false
}

// IsSubcategory reports whether name is a subcategory, ignoring case.
// The canonical spelling is returned when it is.
func IsSubcategory(name string) (string, bool) {
	for _, sub := range AllSubcategories() {
		if strings.EqualFold(sub, name) {
			return sub, true
		}
	}
	return "", false
}

// CanonicalCampus resolves a campus name to its canonical roster spelling,
// ignoring case. Unknown names return ok=false.
func CanonicalCampus(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, campus := range Campuses {
		if strings.EqualFold(campus, trimmed) {
			return campus, true
		}
	}
	return "", false
}
