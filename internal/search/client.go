package search

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/encontro/venues-cli/internal/classify"
	"github.com/encontro/venues-cli/internal/config"
	"github.com/encontro/venues-cli/internal/geo"
	"github.com/encontro/venues-cli/internal/venue"
	"github.com/encontro/venues-cli/pkg/places"
)

// photoMaxWidth is the width requested for venue photo URLs.
const photoMaxWidth = 400

// Client searches the places provider across the configured category
// queries and returns admissible, deduplicated, open venues sorted by
// distance from the caller.
type Client struct {
	places  places.Client
	filter  *classify.CategoryFilter
	limiter *rate.Limiter
	cfg     config.SearchConfig
	hasKey  bool
}

// NewClient creates a search client. hasKey reflects whether a provider
// credential is configured; without one every search fails fast with
// ErrMissingAPIKey instead of calling the network.
func NewClient(p places.Client, filter *classify.CategoryFilter, cfg config.SearchConfig, hasKey bool) *Client {
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 10
	}
	return &Client{
		places:  p,
		filter:  filter,
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
		cfg:     cfg,
		hasKey:  hasKey,
	}
}

// Search runs one provider query per configured category, filters and
// deduplicates the merged results, and returns open venues sorted ascending
// by distance. Provider auth and quota failures short-circuit with a typed
// error and no partial list from the failing query.
func (c *Client) Search(ctx context.Context, lat, lon float64, radiusMeters int) ([]venue.Venue, error) {
	if !c.hasKey {
		return nil, ErrMissingAPIKey
	}

	log := zap.L().With(zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Int("radius_m", radiusMeters))

	seen := make(map[string]bool)
	var venues []venue.Venue

	for _, query := range c.cfg.CategoryQueries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "search: rate limit wait")
		}

		resp, err := c.places.NearbySearch(ctx, places.NearbySearchRequest{
			Latitude:     lat,
			Longitude:    lon,
			RadiusMeters: radiusMeters,
			Keyword:      query,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "search: query %q", query)
		}

		switch resp.Status {
		case places.StatusOK:
		case places.StatusZeroResults:
			continue
		case places.StatusRequestDenied:
			return nil, ErrUnauthorized
		case places.StatusOverQueryLimit:
			return nil, ErrRateLimited
		default:
			return nil, eris.Errorf("search: query %q: provider status %s: %s", query, resp.Status, resp.ErrorMessage)
		}

		for _, r := range resp.Results {
			if seen[r.PlaceID] {
				continue
			}
			if !c.filter.IsAdmissible(r.Types, r.Name) {
				continue
			}
			seen[r.PlaceID] = true
			venues = append(venues, c.toVenue(r, lat, lon))
		}
	}

	// Open-status filtering happens here, not later: only explicitly open
	// venues pass this stage.
	open := venues[:0]
	for _, v := range venues {
		if v.OpenNow != nil && *v.OpenNow {
			open = append(open, v)
		}
	}

	sort.Slice(open, func(i, j int) bool {
		return open[i].DistanceMeters < open[j].DistanceMeters
	})

	log.Debug("search complete", zap.Int("admitted", len(open)), zap.Int("deduped", len(seen)))
	return open, nil
}

func (c *Client) toVenue(r places.Result, viewerLat, viewerLon float64) venue.Venue {
	v := venue.Venue{
		ID:           r.PlaceID,
		Name:         r.Name,
		Address:      r.Vicinity,
		Latitude:     r.Geometry.Location.Lat,
		Longitude:    r.Geometry.Location.Lng,
		CategoryTags: r.Types,
		Rating:       r.Rating,
		PriceLevel:   r.PriceLevel,
	}
	if r.OpeningHours != nil {
		v.OpenNow = r.OpeningHours.OpenNow
	}
	for _, p := range r.Photos {
		v.PhotoURLs = append(v.PhotoURLs, c.places.PhotoURL(p.PhotoReference, photoMaxWidth))
	}
	v.DistanceMeters = geo.DistanceMeters(viewerLat, viewerLon, v.Latitude, v.Longitude)
	return v
}
