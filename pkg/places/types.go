package places

// Status values returned by the legacy Places web service.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusNotFound       = "NOT_FOUND"
)

// NearbySearchResponse is the envelope of a Nearby Search call.
type NearbySearchResponse struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []Result `json:"results"`
}

// Result is one place in a Nearby Search response.
type Result struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Vicinity     string        `json:"vicinity"`
	Geometry     Geometry      `json:"geometry"`
	Types        []string      `json:"types"`
	Photos       []Photo       `json:"photos,omitempty"`
	Rating       *float64      `json:"rating,omitempty"`
	PriceLevel   *int          `json:"price_level,omitempty"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
}

// Geometry holds the place's coordinates.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Photo references a provider-hosted photo.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// OpeningHours carries the open-now bit in search responses and the full
// period list in details responses.
type OpeningHours struct {
	OpenNow *bool    `json:"open_now,omitempty"`
	Periods []Period `json:"periods,omitempty"`
}

// Period is one opening interval. Close is absent for always-open venues.
type Period struct {
	Open  TimeOfDay  `json:"open"`
	Close *TimeOfDay `json:"close,omitempty"`
}

// TimeOfDay is a day-of-week (0=Sunday) plus a 24h "HHMM" local time.
type TimeOfDay struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// DetailsResponse is the envelope of a Place Details call.
type DetailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Result       DetailsResult `json:"result"`
}

// DetailsResult holds the detail fields requested for classification.
type DetailsResult struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Types        []string      `json:"types"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
	Reviews      []Review      `json:"reviews,omitempty"`
}

// Review is one free-text review snippet, most recent first.
type Review struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}
