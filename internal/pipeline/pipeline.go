// Package pipeline chains discovery, classification, activity enrichment,
// and dating-score ranking into the single query the app serves: "where
// should I go tonight, near here".
package pipeline

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/encontro/venues-cli/internal/datescore"
	"github.com/encontro/venues-cli/internal/venue"
)

// Discoverer finds open venues around a point, widening the radius as needed.
type Discoverer interface {
	SearchWithExpansion(ctx context.Context, lat, lon float64, startRadius int) ([]venue.Venue, error)
}

// Classifier resolves cached-or-fresh nightlife classifications in bulk.
type Classifier interface {
	BatchGetOrRefresh(ctx context.Context, venues []venue.Venue) (map[string]*venue.Classification, error)
}

// ActivitySource joins venues with live presence counts.
type ActivitySource interface {
	Enrich(ctx context.Context, venues []venue.Venue) ([]venue.WithActivity, error)
}

// VibeSource counts recent positive vibe tags per venue.
type VibeSource interface {
	VibeCounts(ctx context.Context, placeIDs []string, tags []string) (map[string]int, error)
}

// Pipeline runs the full venue discovery flow.
type Pipeline struct {
	discoverer Discoverer
	classifier Classifier
	activity   ActivitySource
	vibes      VibeSource
	minScore   int
}

// New creates a Pipeline. Venues classified below minScore are dropped
// before ranking.
func New(d Discoverer, c Classifier, a ActivitySource, v VibeSource, minScore int) *Pipeline {
	return &Pipeline{
		discoverer: d,
		classifier: c,
		activity:   a,
		vibes:      v,
		minScore:   minScore,
	}
}

// Run discovers, classifies, enriches, and ranks venues around a point. An
// empty result is a valid outcome: it means nothing nightlife-worthy is open
// within the largest search radius.
func (p *Pipeline) Run(ctx context.Context, lat, lon float64, startRadius int) ([]venue.Ranked, error) {
	log := zap.L().With(zap.Float64("lat", lat), zap.Float64("lon", lon))

	found, err := p.discoverer.SearchWithExpansion(ctx, lat, lon, startRadius)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: discover")
	}
	if len(found) == 0 {
		log.Info("pipeline: no open venues within largest radius")
		return []venue.Ranked{}, nil
	}

	classifications, err := p.classifier.BatchGetOrRefresh(ctx, found)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: classify")
	}

	kept := make([]venue.Venue, 0, len(found))
	for _, v := range found {
		cl, ok := classifications[v.ID]
		if !ok || cl.IsBlocked || cl.NightlifeScore < p.minScore {
			continue
		}
		kept = append(kept, v)
	}
	log.Debug("pipeline: classification filter",
		zap.Int("found", len(found)), zap.Int("kept", len(kept)))
	if len(kept) == 0 {
		return []venue.Ranked{}, nil
	}

	enriched, err := p.activity.Enrich(ctx, kept)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: enrich activity")
	}

	ids := make([]string, 0, len(kept))
	for _, v := range kept {
		ids = append(ids, v.ID)
	}
	vibeCounts, err := p.vibes.VibeCounts(ctx, ids, datescore.PositiveVibeTags)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: vibe counts")
	}

	ranked := make([]venue.Ranked, 0, len(enriched))
	for _, wa := range enriched {
		score := datescore.Score(datescore.Inputs{
			CategoryTags:       wa.CategoryTags,
			Rating:             wa.Rating,
			DistanceMeters:     wa.DistanceMeters,
			OpenToMeetingCount: wa.OpenToMeetingCount,
			PositiveVibeCount:  vibeCounts[wa.ID],
		})
		ranked = append(ranked, venue.Ranked{
			WithActivity:   wa,
			NightlifeScore: classifications[wa.ID].NightlifeScore,
			DatingScore:    score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DatingScore != ranked[j].DatingScore {
			return ranked[i].DatingScore > ranked[j].DatingScore
		}
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})
	return ranked, nil
}
