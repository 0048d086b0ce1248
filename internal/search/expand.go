package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/encontro/venues-cli/internal/venue"
)

// Searcher is the per-radius search operation the expander drives.
type Searcher interface {
	Search(ctx context.Context, lat, lon float64, radiusMeters int) ([]venue.Venue, error)
}

// Expander widens the search radius through a fixed ascending sequence of
// steps until a step yields at least one venue. Steps run sequentially: each
// result decides whether the next step runs at all.
type Expander struct {
	searcher Searcher
	steps    []int
}

// NewExpander creates an expander over the given ascending radius steps.
func NewExpander(searcher Searcher, steps []int) *Expander {
	return &Expander{searcher: searcher, steps: steps}
}

// SearchWithExpansion searches at each step starting from the first step
// matching or exceeding startRadius. It stops at the first non-empty result
// or the first error. An empty list after the final step is a valid terminal
// outcome, distinct from a provider failure. No radius is ever retried.
func (e *Expander) SearchWithExpansion(ctx context.Context, lat, lon float64, startRadius int) ([]venue.Venue, error) {
	start := 0
	for start < len(e.steps)-1 && e.steps[start] < startRadius {
		start++
	}

	for _, radius := range e.steps[start:] {
		venues, err := e.searcher.Search(ctx, lat, lon, radius)
		if err != nil {
			return nil, err
		}
		if len(venues) > 0 {
			return venues, nil
		}
		zap.L().Debug("no venues at radius, expanding", zap.Int("radius_m", radius))
	}

	return nil, nil
}
