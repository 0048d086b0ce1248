package search

import (
	"context"
	"fmt"

	"github.com/encontro/venues-cli/internal/venue"
	"github.com/encontro/venues-cli/pkg/places"
)

// mockPlaces implements places.Client for testing. Responses are keyed by
// keyword; err, if set, fails every call.
type mockPlaces struct {
	responses map[string]*places.NearbySearchResponse
	err       error
	calls     []places.NearbySearchRequest
}

func (m *mockPlaces) NearbySearch(_ context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	if resp, ok := m.responses[req.Keyword]; ok {
		return resp, nil
	}
	return &places.NearbySearchResponse{Status: places.StatusZeroResults}, nil
}

func (m *mockPlaces) Details(context.Context, string) (*places.DetailsResponse, error) {
	return &places.DetailsResponse{Status: places.StatusNotFound}, nil
}

func (m *mockPlaces) PhotoURL(ref string, maxWidth int) string {
	return fmt.Sprintf("https://photos.test/%s?w=%d", ref, maxWidth)
}

// mockSearcher implements Searcher with canned per-radius results.
type mockSearcher struct {
	byRadius map[int][]venue.Venue
	err      error
	calls    []int
}

func (m *mockSearcher) Search(_ context.Context, _, _ float64, radiusMeters int) ([]venue.Venue, error) {
	m.calls = append(m.calls, radiusMeters)
	if m.err != nil {
		return nil, m.err
	}
	return m.byRadius[radiusMeters], nil
}

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

func openResult(id, name string, lat, lng float64, types ...string) places.Result {
	return places.Result{
		PlaceID:      id,
		Name:         name,
		Vicinity:     "Rua Teste, 1",
		Geometry:     places.Geometry{Location: places.LatLng{Lat: lat, Lng: lng}},
		Types:        types,
		OpeningHours: &places.OpeningHours{OpenNow: boolPtr(true)},
	}
}
