package classify

import "strings"

// Review keyword lists, accent-folded pt-BR plus common English terms the
// provider surfaces. Each review contributes at most one hit per polarity.
var (
	positiveKeywords = []string{
		"balada",
		"agito",
		"noite",
		"madrugada",
		"dj",
		"pista de danca",
		"musica ao vivo",
		"drinks",
		"happy hour",
		"nightlife",
		"dance floor",
		"lotado",
	}

	negativeKeywords = []string{
		"almoco",
		"cafe da manha",
		"familia",
		"criancas",
		"tranquilo",
		"silencioso",
		"fechou cedo",
		"fecha cedo",
		"self service",
		"marmitex",
		"quiet",
	}
)

// countReviewKeywords tallies positive and negative keyword hits across
// review texts. The first match per polarity per review counts; further
// matches in the same text do not inflate the tally.
func countReviewKeywords(reviewTexts []string) (positive, negative int) {
	for _, text := range reviewTexts {
		folded := fold(text)
		for _, kw := range positiveKeywords {
			if strings.Contains(folded, kw) {
				positive++
				break
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(folded, kw) {
				negative++
				break
			}
		}
	}
	return positive, negative
}
