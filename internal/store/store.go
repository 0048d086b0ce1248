package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/encontro/venues-cli/internal/venue"
)

// Sentinel errors surfaced by store implementations.
var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = eris.New("store: not found")

	// ErrAlreadyReported means the same reporter already filed the same
	// flag type against the same venue.
	ErrAlreadyReported = eris.New("store: already reported")
)

// Store is the persistence interface for classification cache entries,
// community flags, live presence, and vibe tags.
type Store interface {
	// Classification cache
	GetClassification(ctx context.Context, placeID string) (*venue.Classification, error)
	UpsertClassification(ctx context.Context, c *venue.Classification) error

	// Community flags. InsertFlag returns ErrAlreadyReported on the
	// (place_id, reporter_id, type) uniqueness violation.
	// IncrementFlagCount is an atomic SQL increment, not read-modify-write,
	// and returns the new count.
	InsertFlag(ctx context.Context, f venue.Flag) error
	IncrementFlagCount(ctx context.Context, placeID string) (int, error)
	SetBlocked(ctx context.Context, placeID string, blocked bool) error

	// Live activity
	AddPresence(ctx context.Context, p venue.Presence) error
	ActivePresences(ctx context.Context, placeIDs []string, since, now time.Time) ([]venue.Presence, error)

	// Community vibes
	AddVibe(ctx context.Context, v venue.Vibe) error
	VibeCounts(ctx context.Context, placeIDs []string, tags []string) (map[string]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
