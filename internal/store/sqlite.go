package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/encontro/venues-cli/internal/venue"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS venue_classifications (
	place_id                TEXT PRIMARY KEY,
	closes_late_on_weekend  INTEGER NOT NULL DEFAULT 0,
	opens_in_evening        INTEGER NOT NULL DEFAULT 0,
	review_keyword_positive INTEGER NOT NULL DEFAULT 0,
	review_keyword_negative INTEGER NOT NULL DEFAULT 0,
	community_verified      INTEGER,
	is_blocked              INTEGER NOT NULL DEFAULT 0,
	community_flag_count    INTEGER NOT NULL DEFAULT 0,
	nightlife_score         INTEGER NOT NULL DEFAULT 0,
	last_refreshed_at       DATETIME,
	created_at              DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at              DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS venue_flags (
	id          TEXT PRIMARY KEY,
	place_id    TEXT NOT NULL,
	reporter_id TEXT NOT NULL,
	flag_type   TEXT NOT NULL,
	note        TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (place_id, reporter_id, flag_type)
);

CREATE TABLE IF NOT EXISTS venue_presences (
	id              TEXT PRIMARY KEY,
	place_id        TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	open_to_meeting INTEGER NOT NULL DEFAULT 0,
	started_at      DATETIME NOT NULL,
	ends_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS venue_vibes (
	id         TEXT PRIMARY KEY,
	place_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	tag        TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_venue_flags_place_id ON venue_flags(place_id);
CREATE INDEX IF NOT EXISTS idx_venue_presences_place_id ON venue_presences(place_id);
CREATE INDEX IF NOT EXISTS idx_venue_presences_started_at ON venue_presences(started_at);
CREATE INDEX IF NOT EXISTS idx_venue_vibes_place_id ON venue_vibes(place_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetClassification(ctx context.Context, placeID string) (*venue.Classification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT place_id, closes_late_on_weekend, opens_in_evening,
		       review_keyword_positive, review_keyword_negative,
		       community_verified, is_blocked, community_flag_count,
		       nightlife_score, last_refreshed_at
		FROM venue_classifications WHERE place_id = ?`, placeID)

	var c venue.Classification
	var verified sql.NullBool
	var refreshed sql.NullTime
	err := row.Scan(&c.PlaceID, &c.ClosesLateOnWeekend, &c.OpensInEvening,
		&c.ReviewKeywordPositive, &c.ReviewKeywordNegative,
		&verified, &c.IsBlocked, &c.CommunityFlagCount,
		&c.NightlifeScore, &refreshed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get classification %s", placeID)
	}
	if verified.Valid {
		c.CommunityVerified = &verified.Bool
	}
	if refreshed.Valid {
		t := refreshed.Time.UTC()
		c.LastRefreshedAt = &t
	}
	return &c, nil
}

func (s *SQLiteStore) UpsertClassification(ctx context.Context, c *venue.Classification) error {
	var verified any
	if c.CommunityVerified != nil {
		verified = *c.CommunityVerified
	}
	var refreshed any
	if c.LastRefreshedAt != nil {
		refreshed = c.LastRefreshedAt.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO venue_classifications (
			place_id, closes_late_on_weekend, opens_in_evening,
			review_keyword_positive, review_keyword_negative,
			community_verified, is_blocked, community_flag_count,
			nightlife_score, last_refreshed_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (place_id) DO UPDATE SET
			closes_late_on_weekend = excluded.closes_late_on_weekend,
			opens_in_evening = excluded.opens_in_evening,
			review_keyword_positive = excluded.review_keyword_positive,
			review_keyword_negative = excluded.review_keyword_negative,
			community_verified = excluded.community_verified,
			is_blocked = excluded.is_blocked,
			community_flag_count = excluded.community_flag_count,
			nightlife_score = excluded.nightlife_score,
			last_refreshed_at = excluded.last_refreshed_at,
			updated_at = datetime('now')`,
		c.PlaceID, c.ClosesLateOnWeekend, c.OpensInEvening,
		c.ReviewKeywordPositive, c.ReviewKeywordNegative,
		verified, c.IsBlocked, c.CommunityFlagCount,
		c.NightlifeScore, refreshed,
	)
	return eris.Wrapf(err, "sqlite: upsert classification %s", c.PlaceID)
}

func (s *SQLiteStore) InsertFlag(ctx context.Context, f venue.Flag) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO venue_flags (id, place_id, reporter_id, flag_type, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.PlaceID, f.ReporterID, string(f.Type), f.Note, time.Now().UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyReported
		}
		return eris.Wrapf(err, "sqlite: insert flag %s", f.PlaceID)
	}
	return nil
}

func (s *SQLiteStore) IncrementFlagCount(ctx context.Context, placeID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE venue_classifications
		SET community_flag_count = community_flag_count + 1, updated_at = datetime('now')
		WHERE place_id = ?`, placeID)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: increment flag count %s", placeID)
	}
	if err := checkRowsAffected(res, "classification", placeID); err != nil {
		return 0, err
	}

	var count int
	row := s.db.QueryRowContext(ctx,
		`SELECT community_flag_count FROM venue_classifications WHERE place_id = ?`, placeID)
	if err := row.Scan(&count); err != nil {
		return 0, eris.Wrapf(err, "sqlite: read flag count %s", placeID)
	}
	return count, nil
}

func (s *SQLiteStore) SetBlocked(ctx context.Context, placeID string, blocked bool) error {
	// Blocking forces the score to 0; unblocking leaves it for the next refresh.
	res, err := s.db.ExecContext(ctx, `
		UPDATE venue_classifications
		SET is_blocked = ?,
		    nightlife_score = CASE WHEN ? THEN 0 ELSE nightlife_score END,
		    updated_at = datetime('now')
		WHERE place_id = ?`, blocked, blocked, placeID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set blocked %s", placeID)
	}
	return checkRowsAffected(res, "classification", placeID)
}

func (s *SQLiteStore) AddPresence(ctx context.Context, p venue.Presence) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO venue_presences (id, place_id, user_id, open_to_meeting, started_at, ends_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.PlaceID, p.UserID, p.OpenToMeeting, p.StartedAt.UTC(), p.EndsAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: add presence %s", p.PlaceID)
}

func (s *SQLiteStore) ActivePresences(ctx context.Context, placeIDs []string, since, now time.Time) ([]venue.Presence, error) {
	if len(placeIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, place_id, user_id, open_to_meeting, started_at, ends_at
		FROM venue_presences
		WHERE place_id IN (%s) AND started_at >= ? AND ends_at > ?`,
		placeholders(len(placeIDs)))

	args := make([]any, 0, len(placeIDs)+2)
	for _, id := range placeIDs {
		args = append(args, id)
	}
	args = append(args, since.UTC(), now.UTC())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: active presences")
	}
	defer rows.Close() //nolint:errcheck

	var out []venue.Presence
	for rows.Next() {
		var p venue.Presence
		if err := rows.Scan(&p.ID, &p.PlaceID, &p.UserID, &p.OpenToMeeting, &p.StartedAt, &p.EndsAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan presence")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate presences")
}

func (s *SQLiteStore) AddVibe(ctx context.Context, v venue.Vibe) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO venue_vibes (id, place_id, user_id, tag, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.PlaceID, v.UserID, v.Tag, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: add vibe %s", v.PlaceID)
}

func (s *SQLiteStore) VibeCounts(ctx context.Context, placeIDs []string, tags []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(placeIDs) == 0 || len(tags) == 0 {
		return counts, nil
	}

	query := fmt.Sprintf(`
		SELECT place_id, COUNT(*) FROM venue_vibes
		WHERE place_id IN (%s) AND tag IN (%s)
		GROUP BY place_id`,
		placeholders(len(placeIDs)), placeholders(len(tags)))

	args := make([]any, 0, len(placeIDs)+len(tags))
	for _, id := range placeIDs {
		args = append(args, id)
	}
	for _, tag := range tags {
		args = append(args, tag)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: vibe counts")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var placeID string
		var n int
		if err := rows.Scan(&placeID, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan vibe count")
		}
		counts[placeID] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: iterate vibe counts")
}

// placeholders returns n comma-separated "?" placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}
