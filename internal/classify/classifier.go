package classify

import (
	"math"

	"github.com/encontro/venues-cli/internal/venue"
)

// Score weights and caps for the computed nightlife score.
const (
	categoryWeight        = 0.25
	lateWeekendBonus      = 30
	eveningOpenBonus      = 15
	reviewHitWeight       = 3
	reviewContributionCap = 15
	verifiedBonus         = 20
	flagPenaltyPerFlag    = 2
	flagPenaltyCap        = 10
)

// Inputs carries everything the classifier needs for one venue. Prior is the
// existing cache entry, if any; it supplies the blocked flag, community
// verification, and the flag count.
type Inputs struct {
	PlaceID      string
	Name         string
	CategoryTags []string
	HoursPeriods []Period
	ReviewTexts  []string
	Prior        *venue.Classification
}

// Classifier computes the 0-100 nightlife score for a venue.
type Classifier struct {
	registry *Registry
}

// NewClassifier creates a classifier consulting the given verified registry.
func NewClassifier(registry *Registry) *Classifier {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Classifier{registry: registry}
}

// Classify returns the nightlife score for the given inputs.
//
// Blocked venues score 0 unconditionally. Verified overrides bypass the
// weighted formula, keeping only the flag penalty. Otherwise the score is a
// weighted sum of category, hours, review-keyword, and verification signals
// minus the flag penalty, clamped to [0,100].
func (c *Classifier) Classify(in Inputs) int {
	if in.Prior != nil && in.Prior.IsBlocked {
		return 0
	}

	flagCount := 0
	if in.Prior != nil {
		flagCount = in.Prior.CommunityFlagCount
	}
	penalty := flagPenalty(flagCount)

	if o := c.registry.Match(in.PlaceID, in.Name); o != nil {
		s := o.Score - penalty
		if s < 0 {
			s = 0
		}
		return s
	}

	score := int(math.Round(categoryWeight * float64(BaseCategoryScore(in.CategoryTags))))
	score += hoursContribution(in.HoursPeriods)
	score += reviewContribution(in.ReviewTexts)
	if in.Prior != nil && in.Prior.CommunityVerified != nil && *in.Prior.CommunityVerified {
		score += verifiedBonus
	}
	score -= penalty

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Signals returns the raw hour and review signals for persistence alongside
// the score.
func (c *Classifier) Signals(in Inputs) (closesLate, eveningOpen bool, positive, negative int) {
	closesLate = closesLateOnWeekend(in.HoursPeriods)
	eveningOpen = opensInEvening(in.HoursPeriods)
	positive, negative = countReviewKeywords(in.ReviewTexts)
	return closesLate, eveningOpen, positive, negative
}

func hoursContribution(periods []Period) int {
	if closesLateOnWeekend(periods) {
		return lateWeekendBonus
	}
	if opensInEvening(periods) {
		return eveningOpenBonus
	}
	return 0
}

func reviewContribution(reviewTexts []string) int {
	positive, negative := countReviewKeywords(reviewTexts)
	v := reviewHitWeight * (positive - negative)
	if v < 0 {
		return 0
	}
	if v > reviewContributionCap {
		return reviewContributionCap
	}
	return v
}

func flagPenalty(flagCount int) int {
	p := flagPenaltyPerFlag * flagCount
	if p > flagPenaltyCap {
		return flagPenaltyCap
	}
	return p
}
