package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encontro/venues-cli/internal/classify"
	"github.com/encontro/venues-cli/internal/config"
	"github.com/encontro/venues-cli/pkg/places"
)

func searchConfig() config.SearchConfig {
	return config.SearchConfig{
		CategoryQueries: []string{"bar", "balada"},
		RateLimit:       1000, // no throttling in tests
	}
}

func newTestClient(mp *mockPlaces, hasKey bool) *Client {
	return NewClient(mp, classify.NewCategoryFilter(), searchConfig(), hasKey)
}

func TestSearch_MissingAPIKey(t *testing.T) {
	mp := &mockPlaces{}
	c := newTestClient(mp, false)

	_, err := c.Search(context.Background(), -23.55, -46.63, 2000)
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Empty(t, mp.calls, "must not call the network without a key")
}

func TestSearch_DedupAcrossQueries(t *testing.T) {
	shared := openResult("pl-1", "Bar Central", -23.551, -46.631, "bar")
	mp := &mockPlaces{responses: map[string]*places.NearbySearchResponse{
		"bar":    {Status: places.StatusOK, Results: []places.Result{shared}},
		"balada": {Status: places.StatusOK, Results: []places.Result{shared, openResult("pl-2", "Club Dois", -23.552, -46.632, "night_club")}},
	}}
	c := newTestClient(mp, true)

	venues, err := c.Search(context.Background(), -23.55, -46.63, 2000)
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Len(t, mp.calls, 2)
}

func TestSearch_FiltersInadmissibleAndClosed(t *testing.T) {
	closed := openResult("pl-closed", "Bar Fechado", -23.55, -46.63, "bar")
	closed.OpeningHours = &places.OpeningHours{OpenNow: boolPtr(false)}
	unknown := openResult("pl-unknown", "Bar Incerto", -23.55, -46.63, "bar")
	unknown.OpeningHours = nil

	mp := &mockPlaces{responses: map[string]*places.NearbySearchResponse{
		"bar": {Status: places.StatusOK, Results: []places.Result{
			openResult("pl-ok", "Bar Aberto", -23.551, -46.631, "bar"),
			openResult("pl-pharmacy", "Drink Drogaria", -23.55, -46.63, "bar", "pharmacy"),
			closed,
			unknown,
		}},
	}}
	c := newTestClient(mp, true)

	venues, err := c.Search(context.Background(), -23.55, -46.63, 2000)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "pl-ok", venues[0].ID)
}

func TestSearch_SortsByDistance(t *testing.T) {
	mp := &mockPlaces{responses: map[string]*places.NearbySearchResponse{
		"bar": {Status: places.StatusOK, Results: []places.Result{
			openResult("pl-far", "Bar Longe", -23.60, -46.63, "bar"),
			openResult("pl-near", "Bar Perto", -23.551, -46.631, "bar"),
		}},
	}}
	c := newTestClient(mp, true)

	venues, err := c.Search(context.Background(), -23.55, -46.63, 20000)
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, "pl-near", venues[0].ID)
	assert.Equal(t, "pl-far", venues[1].ID)
	assert.Greater(t, venues[1].DistanceMeters, venues[0].DistanceMeters)
}

func TestSearch_TypedProviderErrors(t *testing.T) {
	tests := []struct {
		status string
		want   error
	}{
		{places.StatusRequestDenied, ErrUnauthorized},
		{places.StatusOverQueryLimit, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			mp := &mockPlaces{responses: map[string]*places.NearbySearchResponse{
				"bar": {Status: tt.status},
			}}
			c := newTestClient(mp, true)

			venues, err := c.Search(context.Background(), -23.55, -46.63, 2000)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, venues, "no partial list on provider failure")
		})
	}
}

func TestSearch_ZeroResultsIsNotAnError(t *testing.T) {
	mp := &mockPlaces{responses: map[string]*places.NearbySearchResponse{
		"bar":    {Status: places.StatusZeroResults},
		"balada": {Status: places.StatusZeroResults},
	}}
	c := newTestClient(mp, true)

	venues, err := c.Search(context.Background(), -23.55, -46.63, 2000)
	require.NoError(t, err)
	assert.Empty(t, venues)
}

func TestSearch_BuildsPhotoURLs(t *testing.T) {
	r := openResult("pl-1", "Bar Foto", -23.551, -46.631, "bar")
	r.Photos = []places.Photo{{PhotoReference: "ref-1"}}
	mp := &mockPlaces{responses: map[string]*places.NearbySearchResponse{
		"bar": {Status: places.StatusOK, Results: []places.Result{r}},
	}}
	c := newTestClient(mp, true)

	venues, err := c.Search(context.Background(), -23.55, -46.63, 2000)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	require.Len(t, venues[0].PhotoURLs, 1)
	assert.Contains(t, venues[0].PhotoURLs[0], "ref-1")
}
