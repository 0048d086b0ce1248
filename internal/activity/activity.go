// Package activity overlays live crowd signals onto venues: how many app
// users checked in at a venue recently and how many of those are open to
// meeting someone.
package activity

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/encontro/venues-cli/internal/venue"
)

// RecencyHorizon bounds how old a check-in may be and still count as "there
// tonight".
const RecencyHorizon = 4 * time.Hour

// Source yields the raw presence rows still active in a recency window.
// Satisfied by store.Store.
type Source interface {
	ActivePresences(ctx context.Context, placeIDs []string, since, now time.Time) ([]venue.Presence, error)
}

// Enricher joins venues with their current presence counts.
type Enricher struct {
	source Source
	now    func() time.Time
}

func NewEnricher(source Source) *Enricher {
	return &Enricher{source: source, now: time.Now}
}

// Enrich returns one WithActivity per input venue, in input order. Venues
// with no recent check-ins get zero counts rather than being dropped.
func (e *Enricher) Enrich(ctx context.Context, venues []venue.Venue) ([]venue.WithActivity, error) {
	out := make([]venue.WithActivity, 0, len(venues))
	if len(venues) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(venues))
	for _, v := range venues {
		ids = append(ids, v.ID)
	}

	now := e.now()
	presences, err := e.source.ActivePresences(ctx, ids, now.Add(-RecencyHorizon), now)
	if err != nil {
		return nil, eris.Wrap(err, "activity: load presences")
	}

	present := make(map[string]int, len(venues))
	openToMeeting := make(map[string]int, len(venues))
	for _, p := range presences {
		present[p.PlaceID]++
		if p.OpenToMeeting {
			openToMeeting[p.PlaceID]++
		}
	}

	for _, v := range venues {
		out = append(out, venue.WithActivity{
			Venue:              v,
			PresentCount:       present[v.ID],
			OpenToMeetingCount: openToMeeting[v.ID],
		})
	}
	return out, nil
}
