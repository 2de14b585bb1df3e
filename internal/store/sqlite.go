// Package store persists scored matches and per-user settings in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobscout/jobscout/internal/model"
)

// Ensure SQLiteStore satisfies both store contracts.
var (
	_ model.MatchStore    = (*SQLiteStore)(nil)
	_ model.SettingsStore = (*SQLiteStore)(nil)
)

// SQLiteStore backs the match and settings stores with a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			id          TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			title       TEXT NOT NULL DEFAULT '',
			company     TEXT NOT NULL DEFAULT '',
			location    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			link        TEXT NOT NULL DEFAULT '',
			score       REAL NOT NULL DEFAULT 0,
			reasoning   TEXT NOT NULL DEFAULT '{}',
			source      TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  DATETIME NOT NULL,
			PRIMARY KEY (user_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_digest
			ON matches (user_id, status, created_at)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id             TEXT PRIMARY KEY,
			display_name        TEXT NOT NULL DEFAULT '',
			account_email       TEXT NOT NULL DEFAULT '',
			digest_email        TEXT NOT NULL DEFAULT '',
			automation_enabled  INTEGER NOT NULL DEFAULT 0,
			match_threshold     REAL NOT NULL DEFAULT 0,
			timezone            TEXT NOT NULL DEFAULT '',
			last_digest_sent_at DATETIME
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// UpsertMatches writes the batch in one transaction: either every row lands
// or none do. On conflict the posting fields and score are refreshed while
// status and created_at keep their original values, so a rescan never resets
// the user's review state.
func (s *SQLiteStore) UpsertMatches(ctx context.Context, matches []model.ScoredMatch) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matches
		(id, user_id, title, company, location, description, link, score, reasoning, source, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			location = excluded.location,
			description = excluded.description,
			link = excluded.link,
			score = excluded.score,
			reasoning = excluded.reasoning,
			source = excluded.source`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		reasoning, err := json.Marshal(m.Reasoning)
		if err != nil {
			return fmt.Errorf("marshaling reasoning for %s: %w", m.ID, err)
		}
		status := m.Status
		if status == "" {
			status = model.StatusPending
		}
		_, err = stmt.ExecContext(ctx,
			m.ID, m.UserID, m.Title, m.Company, m.Location, m.Description,
			m.Link, m.Score, string(reasoning), m.Source, string(status), m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// UpdateStatus moves one match to the given status.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, userID, matchID string, status model.MatchStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE matches SET status = ? WHERE user_id = ? AND id = ?",
		string(status), userID, matchID,
	)
	if err != nil {
		return fmt.Errorf("updating status for %s: %w", matchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status for %s: %w", matchID, err)
	}
	if n == 0 {
		return fmt.Errorf("match %s not found for user %s", matchID, userID)
	}
	return nil
}

// MatchesForDigest returns non-dismissed matches ordered by score descending.
// since bounds CreatedAt when non-nil; limit caps the result.
func (s *SQLiteStore) MatchesForDigest(ctx context.Context, userID string, since *time.Time, limit int) ([]model.ScoredMatch, error) {
	query := `SELECT id, user_id, title, company, location, description, link, score, reasoning, source, status, created_at
		FROM matches
		WHERE user_id = ? AND status != ?`
	args := []any{userID, string(model.StatusDismissed)}
	if since != nil {
		query += " AND created_at >= ?"
		args = append(args, *since)
	}
	query += " ORDER BY score DESC, created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying digest matches for %s: %w", userID, err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

// MatchesByUser returns every stored match for the user, newest first.
func (s *SQLiteStore) MatchesByUser(ctx context.Context, userID string) ([]model.ScoredMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, company, location, description, link, score, reasoning, source, status, created_at
		FROM matches WHERE user_id = ? ORDER BY created_at DESC, score DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying matches for %s: %w", userID, err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]model.ScoredMatch, error) {
	var out []model.ScoredMatch
	for rows.Next() {
		var m model.ScoredMatch
		var reasoning, status string
		err := rows.Scan(&m.ID, &m.UserID, &m.Title, &m.Company, &m.Location,
			&m.Description, &m.Link, &m.Score, &reasoning, &m.Source, &status, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		if err := json.Unmarshal([]byte(reasoning), &m.Reasoning); err != nil {
			return nil, fmt.Errorf("decoding reasoning for %s: %w", m.ID, err)
		}
		m.Status = model.MatchStatus(status)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match rows: %w", err)
	}
	return out, nil
}

// Settings returns the user's settings row. A user with no row yet gets zero
// defaults rather than an error; first save creates the row.
func (s *SQLiteStore) Settings(ctx context.Context, userID string) (model.UserSettings, error) {
	var u model.UserSettings
	var lastSent sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, account_email, digest_email, automation_enabled, match_threshold, timezone, last_digest_sent_at
		FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&u.UserID, &u.DisplayName, &u.AccountEmail, &u.DigestEmail,
		&u.AutomationEnabled, &u.MatchThreshold, &u.Timezone, &lastSent)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserSettings{UserID: userID}, nil
	}
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("loading settings for %s: %w", userID, err)
	}
	if lastSent.Valid {
		t := lastSent.Time
		u.LastDigestSentAt = &t
	}
	return u, nil
}

// SaveSettings upserts the user's settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings model.UserSettings) error {
	var lastSent any
	if settings.LastDigestSentAt != nil {
		lastSent = *settings.LastDigestSentAt
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_settings
		(user_id, display_name, account_email, digest_email, automation_enabled, match_threshold, timezone, last_digest_sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			account_email = excluded.account_email,
			digest_email = excluded.digest_email,
			automation_enabled = excluded.automation_enabled,
			match_threshold = excluded.match_threshold,
			timezone = excluded.timezone,
			last_digest_sent_at = excluded.last_digest_sent_at`,
		settings.UserID, settings.DisplayName, settings.AccountEmail, settings.DigestEmail,
		settings.AutomationEnabled, settings.MatchThreshold, settings.Timezone, lastSent,
	)
	if err != nil {
		return fmt.Errorf("saving settings for %s: %w", settings.UserID, err)
	}
	return nil
}

// StampDigestSent records the digest high-water mark for the user.
func (s *SQLiteStore) StampDigestSent(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE user_settings SET last_digest_sent_at = ? WHERE user_id = ?",
		at, userID,
	)
	if err != nil {
		return fmt.Errorf("stamping digest sent for %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("stamping digest sent for %s: %w", userID, err)
	}
	if n == 0 {
		// No settings row yet: create one carrying just the stamp.
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO user_settings (user_id, last_digest_sent_at) VALUES (?, ?)",
			userID, at,
		)
		if err != nil {
			return fmt.Errorf("stamping digest sent for %s: %w", userID, err)
		}
	}
	return nil
}

// AutomationEnabled returns every user with automation switched on and a
// digest email configured. Users without one are not broadcast candidates.
func (s *SQLiteStore) AutomationEnabled(ctx context.Context) ([]model.UserSettings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, display_name, account_email, digest_email, automation_enabled, match_threshold, timezone, last_digest_sent_at
		FROM user_settings WHERE automation_enabled = 1 AND digest_email != '' ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("querying automation-enabled users: %w", err)
	}
	defer rows.Close()

	var out []model.UserSettings
	for rows.Next() {
		var u model.UserSettings
		var lastSent sql.NullTime
		err := rows.Scan(&u.UserID, &u.DisplayName, &u.AccountEmail, &u.DigestEmail,
			&u.AutomationEnabled, &u.MatchThreshold, &u.Timezone, &lastSent)
		if err != nil {
			return nil, fmt.Errorf("scanning settings row: %w", err)
		}
		if lastSent.Valid {
			t := lastSent.Time
			u.LastDigestSentAt = &t
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating settings rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
