package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailsFields is the field mask requested from Place Details; hours and
// reviews are the classification signals, the rest keeps responses small.
const detailsFields = "place_id,name,types,opening_hours,reviews"

// Client performs Places web service operations.
type Client interface {
	NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error)
	Details(ctx context.Context, placeID string) (*DetailsResponse, error)
	PhotoURL(photoReference string, maxWidth int) string
}

// NearbySearchRequest describes one Nearby Search call.
type NearbySearchRequest struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Keyword      string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places web service client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", req.Latitude, req.Longitude))
	q.Set("radius", strconv.Itoa(req.RadiusMeters))
	q.Set("keyword", req.Keyword)
	q.Set("key", c.apiKey)

	var out NearbySearchResponse
	if err := c.getJSON(ctx, "/nearbysearch/json", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailsFields)
	q.Set("key", c.apiKey)

	var out DetailsResponse
	if err := c.getJSON(ctx, "/details/json", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PhotoURL builds a fetchable URL for a photo reference.
func (c *httpClient) PhotoURL(photoReference string, maxWidth int) string {
	q := url.Values{}
	q.Set("photoreference", photoReference)
	q.Set("maxwidth", strconv.Itoa(maxWidth))
	q.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + q.Encode()
}

func (c *httpClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}

	return nil
}
