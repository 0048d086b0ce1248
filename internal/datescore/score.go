// Package datescore ranks venues by momentary dating-friendliness. The score
// is a sum of independently bounded terms and is deliberately unclamped:
// consumers rank by the raw value, they do not treat it as a percentage.
package datescore

import (
	"math"

	"github.com/encontro/venues-cli/internal/classify"
)

const (
	activityPerPerson  = 20
	activityCap        = 100
	vibePerTag         = 10
	vibeCap            = 50
	ratingScale        = 20
	neutralRating      = 10
	distancePerKm      = 3
	distancePenaltyCap = 30
)

// PositiveVibeTags are the community tags that count toward the vibe term.
var PositiveVibeTags = []string{
	"lively",
	"friendly",
	"good_music",
	"dancing",
	"flirty",
	"great_drinks",
}

// Inputs holds the per-request values feeding the score. Rating is nil when
// the provider has none; absence is neutral, not penalized.
type Inputs struct {
	CategoryTags       []string
	Rating             *float64
	DistanceMeters     float64
	OpenToMeetingCount int
	PositiveVibeCount  int
}

// Score computes the dating-friendliness score. May be negative for a far,
// unrated, inactive venue and may exceed 200 for a close, busy one.
func Score(in Inputs) int {
	score := classify.BaseCategoryScore(in.CategoryTags)

	activity := activityPerPerson * in.OpenToMeetingCount
	if activity > activityCap {
		activity = activityCap
	}
	score += activity

	vibes := vibePerTag * in.PositiveVibeCount
	if vibes > vibeCap {
		vibes = vibeCap
	}
	score += vibes

	if in.Rating != nil {
		score += int(math.Round(ratingScale * *in.Rating / 5))
	} else {
		score += neutralRating
	}

	penalty := int(math.Round(distancePerKm * in.DistanceMeters / 1000))
	if penalty > distancePenaltyCap {
		penalty = distancePenaltyCap
	}
	score -= penalty

	return score
}
