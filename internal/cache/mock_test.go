package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/encontro/venues-cli/internal/store"
	"github.com/encontro/venues-cli/internal/venue"
	"github.com/encontro/venues-cli/pkg/places"
)

// memStore is an in-memory store.Store for cache tests.
type memStore struct {
	mu              sync.Mutex
	classifications map[string]*venue.Classification
	flags           map[string]bool // placeID|reporterID|type
	getErr          error
	upsertErr       error
}

func newMemStore() *memStore {
	return &memStore{
		classifications: make(map[string]*venue.Classification),
		flags:           make(map[string]bool),
	}
}

func (m *memStore) GetClassification(_ context.Context, placeID string) (*venue.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.classifications[placeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) UpsertClassification(_ context.Context, c *venue.Classification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	cp := *c
	m.classifications[c.PlaceID] = &cp
	return nil
}

func (m *memStore) InsertFlag(_ context.Context, f venue.Flag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := f.PlaceID + "|" + f.ReporterID + "|" + string(f.Type)
	if m.flags[key] {
		return store.ErrAlreadyReported
	}
	m.flags[key] = true
	return nil
}

func (m *memStore) IncrementFlagCount(_ context.Context, placeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classifications[placeID]
	if !ok {
		return 0, store.ErrNotFound
	}
	c.CommunityFlagCount++
	return c.CommunityFlagCount, nil
}

func (m *memStore) SetBlocked(_ context.Context, placeID string, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classifications[placeID]
	if !ok {
		return store.ErrNotFound
	}
	c.IsBlocked = blocked
	if blocked {
		c.NightlifeScore = 0
	}
	return nil
}

func (m *memStore) AddPresence(context.Context, venue.Presence) error { return nil }

func (m *memStore) ActivePresences(context.Context, []string, time.Time, time.Time) ([]venue.Presence, error) {
	return nil, nil
}

func (m *memStore) AddVibe(context.Context, venue.Vibe) error { return nil }

func (m *memStore) VibeCounts(context.Context, []string, []string) (map[string]int, error) {
	return nil, nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

// mockPlaces serves canned details responses and counts calls.
type mockPlaces struct {
	mu       sync.Mutex
	details  map[string]*places.DetailsResponse
	err      error
	failFor  int // fail this many calls before succeeding
	calls    int
	callsFor map[string]int
}

func newMockPlaces() *mockPlaces {
	return &mockPlaces{
		details:  make(map[string]*places.DetailsResponse),
		callsFor: make(map[string]int),
	}
}

func (m *mockPlaces) NearbySearch(context.Context, places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	return &places.NearbySearchResponse{Status: places.StatusZeroResults}, nil
}

func (m *mockPlaces) Details(_ context.Context, placeID string) (*places.DetailsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.callsFor[placeID]++
	if m.failFor > 0 {
		m.failFor--
		return nil, eris.New("places: connection reset by peer")
	}
	if m.err != nil {
		return nil, m.err
	}
	if resp, ok := m.details[placeID]; ok {
		return resp, nil
	}
	return &places.DetailsResponse{Status: places.StatusNotFound}, nil
}

func (m *mockPlaces) PhotoURL(ref string, _ int) string { return "https://example.test/" + ref }

func (m *mockPlaces) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func barDetails(placeID, name string) *places.DetailsResponse {
	return &places.DetailsResponse{
		Status: places.StatusOK,
		Result: places.DetailsResult{
			PlaceID: placeID,
			Name:    name,
			Types:   []string{"bar"},
			OpeningHours: &places.OpeningHours{
				Periods: []places.Period{
					{
						Open:  places.TimeOfDay{Day: 5, Time: "1900"},
						Close: &places.TimeOfDay{Day: 6, Time: "0300"},
					},
				},
			},
			Reviews: []places.Review{
				{Text: "Balada incrível, drinks ótimos", Rating: 5},
			},
		},
	}
}

func timePtr(t time.Time) *time.Time { return &t }
