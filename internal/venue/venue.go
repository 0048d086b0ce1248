package venue

import "time"

// Venue represents one physical place returned by the search stage. It is
// rebuilt on every search; DistanceMeters is recomputed from the viewer's
// position and never trusted from a previous fetch.
type Venue struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	CategoryTags   []string `json:"category_tags"`
	PhotoURLs      []string `json:"photo_urls,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	PriceLevel     *int     `json:"price_level,omitempty"`
	OpenNow        *bool    `json:"open_now,omitempty"`
	DistanceMeters float64  `json:"distance_meters"`
}

// Classification is the cached judgment about a venue, keyed by place ID.
// A nil LastRefreshedAt marks a minimal entry built without a details fetch;
// it is always eligible for a real refresh.
type Classification struct {
	PlaceID               string     `json:"place_id"`
	ClosesLateOnWeekend   bool       `json:"closes_late_on_weekend"`
	OpensInEvening        bool       `json:"opens_in_evening"`
	ReviewKeywordPositive int        `json:"review_keyword_positive"`
	ReviewKeywordNegative int        `json:"review_keyword_negative"`
	CommunityVerified     *bool      `json:"community_verified,omitempty"`
	IsBlocked             bool       `json:"is_blocked"`
	CommunityFlagCount    int        `json:"community_flag_count"`
	NightlifeScore        int        `json:"nightlife_score"`
	LastRefreshedAt       *time.Time `json:"last_refreshed_at,omitempty"`
}

// Fresh reports whether the entry was refreshed within ttl of now.
func (c *Classification) Fresh(now time.Time, ttl time.Duration) bool {
	if c.LastRefreshedAt == nil {
		return false
	}
	return now.Sub(*c.LastRefreshedAt) < ttl
}

// FlagType identifies the kind of community report against a venue.
type FlagType string

const (
	FlagNotNightlife  FlagType = "not_nightlife"
	FlagClosed        FlagType = "closed"
	FlagWrongCategory FlagType = "wrong_category"
)

// Valid reports whether t is one of the accepted flag types.
func (t FlagType) Valid() bool {
	switch t {
	case FlagNotNightlife, FlagClosed, FlagWrongCategory:
		return true
	}
	return false
}

// Flag is a community report submitted against a venue. The (PlaceID,
// ReporterID, Type) triple is unique; duplicates surface as AlreadyReported.
type Flag struct {
	ID         string    `json:"id"`
	PlaceID    string    `json:"place_id"`
	ReporterID string    `json:"reporter_id"`
	Type       FlagType  `json:"type"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Presence is a live check-in style record: a user present at a venue for a
// bounded window, optionally open to meeting people.
type Presence struct {
	ID            string    `json:"id"`
	PlaceID       string    `json:"place_id"`
	UserID        string    `json:"user_id"`
	OpenToMeeting bool      `json:"open_to_meeting"`
	StartedAt     time.Time `json:"started_at"`
	EndsAt        time.Time `json:"ends_at"`
}

// Vibe is a community-submitted tag describing the atmosphere of a venue.
type Vibe struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"place_id"`
	UserID    string    `json:"user_id"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// WithActivity pairs a venue with its live presence counts.
type WithActivity struct {
	Venue
	PresentCount       int `json:"present_count"`
	OpenToMeetingCount int `json:"open_to_meeting_count"`
}

// Ranked is the final pipeline output for one venue.
type Ranked struct {
	WithActivity
	NightlifeScore int `json:"nightlife_score"`
	DatingScore    int `json:"dating_score"`
}
