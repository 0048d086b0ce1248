package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbySearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "2000", r.URL.Query().Get("radius"))
		assert.Equal(t, "bar", r.URL.Query().Get("keyword"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"place_id": "pl-1",
				"name": "Bar do Zé",
				"vicinity": "Rua Augusta, 100",
				"geometry": {"location": {"lat": -23.55, "lng": -46.63}},
				"types": ["bar", "point_of_interest"],
				"rating": 4.5,
				"price_level": 2,
				"opening_hours": {"open_now": true}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.NearbySearch(context.Background(), NearbySearchRequest{
		Latitude: -23.55, Longitude: -46.63, RadiusMeters: 2000, Keyword: "bar",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, "pl-1", r.PlaceID)
	assert.Equal(t, "Bar do Zé", r.Name)
	require.NotNil(t, r.Rating)
	assert.InDelta(t, 4.5, *r.Rating, 0.001)
	require.NotNil(t, r.OpeningHours)
	require.NotNil(t, r.OpeningHours.OpenNow)
	assert.True(t, *r.OpeningHours.OpenNow)
}

func TestNearbySearch_StatusPassthrough(t *testing.T) {
	// Provider-level statuses are data, not transport errors.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "results": []}`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	resp, err := c.NearbySearch(context.Background(), NearbySearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusOverQueryLimit, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestNearbySearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.NearbySearch(context.Background(), NearbySearchRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDetails_ParsesHoursAndReviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "pl-1", r.URL.Query().Get("place_id"))
		assert.Contains(t, r.URL.Query().Get("fields"), "opening_hours")

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "pl-1",
				"name": "Club Noir",
				"types": ["night_club"],
				"opening_hours": {
					"periods": [
						{"open": {"day": 5, "time": "2200"}, "close": {"day": 6, "time": "0500"}}
					]
				},
				"reviews": [{"text": "melhor balada da cidade", "rating": 5}]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	resp, err := c.Details(context.Background(), "pl-1")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	require.NotNil(t, resp.Result.OpeningHours)
	require.Len(t, resp.Result.OpeningHours.Periods, 1)

	p := resp.Result.OpeningHours.Periods[0]
	assert.Equal(t, 5, p.Open.Day)
	require.NotNil(t, p.Close)
	assert.Equal(t, "0500", p.Close.Time)
	require.Len(t, resp.Result.Reviews, 1)
}

func TestPhotoURL(t *testing.T) {
	c := NewClient("k", WithBaseURL("https://example.test/place"))
	u := c.PhotoURL("ref-123", 400)
	assert.Contains(t, u, "https://example.test/place/photo?")
	assert.Contains(t, u, "photoreference=ref-123")
	assert.Contains(t, u, "maxwidth=400")
}
