package classify

import (
	"regexp"
	"strings"
)

// defaultCategoryScore is assigned to tags absent from the score table, so
// unknown-but-unblacklisted categories are not silently dropped.
const defaultCategoryScore = 20

// categoryScores maps provider category tags to a 0-100 nightlife base score.
var categoryScores = map[string]int{
	"night_club":    100,
	"bar":           90,
	"pub":           85,
	"casino":        60,
	"restaurant":    60,
	"bowling_alley": 50,
	"cafe":          40,
	"movie_theater": 35,
	"liquor_store":  25,
}

// blacklistedTags disqualify a venue outright. A single disqualifying tag
// overrides any number of qualifying ones.
var blacklistedTags = map[string]bool{
	"beauty_salon":           true,
	"hair_care":              true,
	"spa":                    true,
	"pharmacy":               true,
	"drugstore":              true,
	"hospital":               true,
	"doctor":                 true,
	"dentist":                true,
	"physiotherapist":        true,
	"veterinary_care":        true,
	"bank":                   true,
	"atm":                    true,
	"finance":                true,
	"insurance_agency":       true,
	"accounting":             true,
	"real_estate_agency":     true,
	"lawyer":                 true,
	"lodging":                true,
	"gas_station":            true,
	"car_repair":             true,
	"car_dealer":             true,
	"car_wash":               true,
	"supermarket":            true,
	"grocery_or_supermarket": true,
	"convenience_store":      true,
	"department_store":       true,
	"clothing_store":         true,
	"shoe_store":             true,
	"furniture_store":        true,
	"hardware_store":         true,
	"electronics_store":      true,
	"shopping_mall":          true,
	"laundry":                true,
	"church":                 true,
	"mosque":                 true,
	"synagogue":              true,
	"cemetery":               true,
	"school":                 true,
	"primary_school":         true,
	"secondary_school":       true,
	"university":             true,
	"gym":                    true,
	"meal_takeaway":          true,
	"meal_delivery":          true,
	"bakery":                 true,
}

// blockedNameTerms are business-type keywords (pt-BR, accent-folded) whose
// presence in a venue name disqualifies it regardless of tags.
var blockedNameTerms = []string{
	"farmacia",
	"drogaria",
	"hotel",
	"pousada",
	"hostel",
	"motel",
	"tattoo",
	"tatuagem",
	"barbearia",
	"salao de beleza",
	"clinica",
	"laboratorio",
	"academia",
	"igreja",
	"escola",
	"autopeca",
	"oficina",
	"imobiliaria",
	"loterica",
	"padaria",
	"acougue",
	"pet shop",
}

// blockedNamePatterns catch chain/franchise names that leak through generic
// place queries. Matched against the folded name.
var blockedNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmcdonald'?s?\b`),
	regexp.MustCompile(`\bburger king\b`),
	regexp.MustCompile(`\bsubway\b`),
	regexp.MustCompile(`\bkfc\b`),
	regexp.MustCompile(`\bhabib'?s\b`),
	regexp.MustCompile(`\bbob'?s\b`),
	regexp.MustCompile(`\bgiraffas\b`),
	regexp.MustCompile(`\bstarbucks\b`),
	regexp.MustCompile(`\bpizza hut\b`),
	regexp.MustCompile(`\bdomino'?s\b`),
}

// CategoryFilter decides venue admission before any scoring work is spent.
type CategoryFilter struct{}

// NewCategoryFilter returns the shared admission filter.
func NewCategoryFilter() *CategoryFilter {
	return &CategoryFilter{}
}

// IsAdmissible reports whether a venue with the given tags and name should
// enter the pipeline. Rejection by tag or name is absolute; admission
// requires at least one tag with a strictly positive base score, which every
// unblacklisted tag has via the default.
func (f *CategoryFilter) IsAdmissible(categoryTags []string, name string) bool {
	for _, tag := range categoryTags {
		if blacklistedTags[strings.ToLower(tag)] {
			return false
		}
	}

	folded := fold(name)
	for _, term := range blockedNameTerms {
		if strings.Contains(folded, term) {
			return false
		}
	}
	for _, re := range blockedNamePatterns {
		if re.MatchString(folded) {
			return false
		}
	}

	return BaseCategoryScore(categoryTags) > 0
}

// BaseCategoryScore returns the highest base score among the venue's tags,
// falling back to the default for unknown tags. Zero only for an empty tag
// list.
func BaseCategoryScore(categoryTags []string) int {
	if len(categoryTags) == 0 {
		return 0
	}
	best := 0
	for _, tag := range categoryTags {
		s, ok := categoryScores[strings.ToLower(tag)]
		if !ok {
			s = defaultCategoryScore
		}
		if s > best {
			best = s
		}
	}
	return best
}
