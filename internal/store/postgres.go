package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/encontro/venues-cli/internal/venue"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS venue_classifications (
	place_id                TEXT PRIMARY KEY,
	closes_late_on_weekend  BOOLEAN NOT NULL DEFAULT false,
	opens_in_evening        BOOLEAN NOT NULL DEFAULT false,
	review_keyword_positive INTEGER NOT NULL DEFAULT 0,
	review_keyword_negative INTEGER NOT NULL DEFAULT 0,
	community_verified      BOOLEAN,
	is_blocked              BOOLEAN NOT NULL DEFAULT false,
	community_flag_count    INTEGER NOT NULL DEFAULT 0,
	nightlife_score         INTEGER NOT NULL DEFAULT 0,
	last_refreshed_at       TIMESTAMPTZ,
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS venue_flags (
	id          TEXT PRIMARY KEY,
	place_id    TEXT NOT NULL,
	reporter_id TEXT NOT NULL,
	flag_type   TEXT NOT NULL,
	note        TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (place_id, reporter_id, flag_type)
);

CREATE TABLE IF NOT EXISTS venue_presences (
	id              TEXT PRIMARY KEY,
	place_id        TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	open_to_meeting BOOLEAN NOT NULL DEFAULT false,
	started_at      TIMESTAMPTZ NOT NULL,
	ends_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS venue_vibes (
	id         TEXT PRIMARY KEY,
	place_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	tag        TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_venue_flags_place_id ON venue_flags(place_id);
CREATE INDEX IF NOT EXISTS idx_venue_presences_place_id ON venue_presences(place_id);
CREATE INDEX IF NOT EXISTS idx_venue_presences_started_at ON venue_presences(started_at);
CREATE INDEX IF NOT EXISTS idx_venue_vibes_place_id ON venue_vibes(place_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) GetClassification(ctx context.Context, placeID string) (*venue.Classification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT place_id, closes_late_on_weekend, opens_in_evening,
		       review_keyword_positive, review_keyword_negative,
		       community_verified, is_blocked, community_flag_count,
		       nightlife_score, last_refreshed_at
		FROM venue_classifications WHERE place_id = $1`, placeID)

	var c venue.Classification
	err := row.Scan(&c.PlaceID, &c.ClosesLateOnWeekend, &c.OpensInEvening,
		&c.ReviewKeywordPositive, &c.ReviewKeywordNegative,
		&c.CommunityVerified, &c.IsBlocked, &c.CommunityFlagCount,
		&c.NightlifeScore, &c.LastRefreshedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get classification %s", placeID)
	}
	return &c, nil
}

func (s *PostgresStore) UpsertClassification(ctx context.Context, c *venue.Classification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO venue_classifications (
			place_id, closes_late_on_weekend, opens_in_evening,
			review_keyword_positive, review_keyword_negative,
			community_verified, is_blocked, community_flag_count,
			nightlife_score, last_refreshed_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (place_id) DO UPDATE SET
			closes_late_on_weekend = EXCLUDED.closes_late_on_weekend,
			opens_in_evening = EXCLUDED.opens_in_evening,
			review_keyword_positive = EXCLUDED.review_keyword_positive,
			review_keyword_negative = EXCLUDED.review_keyword_negative,
			community_verified = EXCLUDED.community_verified,
			is_blocked = EXCLUDED.is_blocked,
			community_flag_count = EXCLUDED.community_flag_count,
			nightlife_score = EXCLUDED.nightlife_score,
			last_refreshed_at = EXCLUDED.last_refreshed_at,
			updated_at = now()`,
		c.PlaceID, c.ClosesLateOnWeekend, c.OpensInEvening,
		c.ReviewKeywordPositive, c.ReviewKeywordNegative,
		c.CommunityVerified, c.IsBlocked, c.CommunityFlagCount,
		c.NightlifeScore, c.LastRefreshedAt,
	)
	return eris.Wrapf(err, "postgres: upsert classification %s", c.PlaceID)
}

func (s *PostgresStore) InsertFlag(ctx context.Context, f venue.Flag) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO venue_flags (id, place_id, reporter_id, flag_type, note)
		VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.PlaceID, f.ReporterID, string(f.Type), f.Note,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyReported
		}
		return eris.Wrapf(err, "postgres: insert flag %s", f.PlaceID)
	}
	return nil
}

func (s *PostgresStore) IncrementFlagCount(ctx context.Context, placeID string) (int, error) {
	var count int
	row := s.pool.QueryRow(ctx, `
		UPDATE venue_classifications
		SET community_flag_count = community_flag_count + 1, updated_at = now()
		WHERE place_id = $1
		RETURNING community_flag_count`, placeID)
	err := row.Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, eris.Wrapf(ErrNotFound, "classification %s", placeID)
	}
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: increment flag count %s", placeID)
	}
	return count, nil
}

func (s *PostgresStore) SetBlocked(ctx context.Context, placeID string, blocked bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE venue_classifications
		SET is_blocked = $1,
		    nightlife_score = CASE WHEN $1 THEN 0 ELSE nightlife_score END,
		    updated_at = now()
		WHERE place_id = $2`, blocked, placeID)
	if err != nil {
		return eris.Wrapf(err, "postgres: set blocked %s", placeID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "classification %s", placeID)
	}
	return nil
}

func (s *PostgresStore) AddPresence(ctx context.Context, p venue.Presence) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO venue_presences (id, place_id, user_id, open_to_meeting, started_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.PlaceID, p.UserID, p.OpenToMeeting, p.StartedAt, p.EndsAt,
	)
	return eris.Wrapf(err, "postgres: add presence %s", p.PlaceID)
}

func (s *PostgresStore) ActivePresences(ctx context.Context, placeIDs []string, since, now time.Time) ([]venue.Presence, error) {
	if len(placeIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, place_id, user_id, open_to_meeting, started_at, ends_at
		FROM venue_presences
		WHERE place_id = ANY($1) AND started_at >= $2 AND ends_at > $3`,
		placeIDs, since, now)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: active presences")
	}
	defer rows.Close()

	var out []venue.Presence
	for rows.Next() {
		var p venue.Presence
		if err := rows.Scan(&p.ID, &p.PlaceID, &p.UserID, &p.OpenToMeeting, &p.StartedAt, &p.EndsAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan presence")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate presences")
}

func (s *PostgresStore) AddVibe(ctx context.Context, v venue.Vibe) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO venue_vibes (id, place_id, user_id, tag)
		VALUES ($1, $2, $3, $4)`,
		v.ID, v.PlaceID, v.UserID, v.Tag,
	)
	return eris.Wrapf(err, "postgres: add vibe %s", v.PlaceID)
}

func (s *PostgresStore) VibeCounts(ctx context.Context, placeIDs []string, tags []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(placeIDs) == 0 || len(tags) == 0 {
		return counts, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT place_id, COUNT(*) FROM venue_vibes
		WHERE place_id = ANY($1) AND tag = ANY($2)
		GROUP BY place_id`, placeIDs, tags)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: vibe counts")
	}
	defer rows.Close()

	for rows.Next() {
		var placeID string
		var n int
		if err := rows.Scan(&placeID, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan vibe count")
		}
		counts[placeID] = n
	}
	return counts, eris.Wrap(rows.Err(), "postgres: iterate vibe counts")
}
