// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verte-zerg/tuici/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const currentSnapshot = "current"

// Store wraps SQLite access for session data.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection keeps writes ordered.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			session_uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			band TEXT NOT NULL,
			words INTEGER NOT NULL,
			tier_requirement INTEGER NOT NULL,
			policy TEXT NOT NULL,
			stars INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			best_streak INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_word_stats (
			session_id INTEGER NOT NULL,
			word TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (session_id, word)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_word_stats_word ON session_word_stats(word);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type sessionRow struct {
	ID              int64  `db:"id"`
	SessionUUID     string `db:"session_uuid"`
	StartedAt       string `db:"started_at"`
	EndedAt         string `db:"ended_at"`
	Band            string `db:"band"`
	Words           int    `db:"words"`
	TierRequirement int    `db:"tier_requirement"`
	Policy          string `db:"policy"`
	Stars           int    `db:"stars"`
	Correct         int    `db:"correct"`
	Incorrect       int    `db:"incorrect"`
	BestStreak      int    `db:"best_streak"`
	DurationMs      int64  `db:"duration_ms"`
}

// InsertSession stores a finished session and its per-word tallies. A
// session id that was already recorded is ignored and its row id returned.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, words []model.WordStats) (id int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var existing int64
	err = tx.GetContext(ctx, &existing, `SELECT id FROM sessions WHERE session_uuid = ?`, stats.SessionID)
	switch {
	case err == nil:
		if cerr := tx.Rollback(); cerr != nil {
			// Best-effort rollback of the read-only transaction.
			_ = cerr
		}
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	row := sessionRow{
		SessionUUID:     stats.SessionID,
		StartedAt:       stats.StartedAt.UTC().Format(time.RFC3339Nano),
		EndedAt:         stats.EndedAt.UTC().Format(time.RFC3339Nano),
		Band:            stats.Band,
		Words:           stats.Words,
		TierRequirement: stats.TierRequirement,
		Policy:          stats.Policy,
		Stars:           stats.Stars,
		Correct:         stats.Correct,
		Incorrect:       stats.Incorrect,
		BestStreak:      stats.BestStreak,
		DurationMs:      stats.DurationMs,
	}
	res, err := tx.NamedExecContext(ctx,
		`INSERT INTO sessions (session_uuid, started_at, ended_at, band, words, tier_requirement, policy, stars, correct, incorrect, best_streak, duration_ms)
		 VALUES (:session_uuid, :started_at, :ended_at, :band, :words, :tier_requirement, :policy, :stars, :correct, :incorrect, :best_streak, :duration_ms)`,
		row)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(words) > 0 {
		stmt, err := tx.PreparexContext(ctx,
			`INSERT INTO session_word_stats (session_id, word, correct, incorrect) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ws := range words {
			if _, err := stmt.ExecContext(ctx, id, ws.Word, ws.Correct, ws.Incorrect); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Band != "" {
		clauses = append(clauses, "band = ?")
		args = append(args, cfg.Band)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, session_uuid, started_at, ended_at, band, words, tier_requirement, policy, stars, correct, incorrect, best_streak, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	sessions := make([]model.SessionAggregate, 0, len(rows))
	for _, r := range rows {
		ended, err := time.Parse(time.RFC3339Nano, r.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session %d end time: %w", r.ID, err)
		}
		sessions = append(sessions, model.SessionAggregate{
			ID:         r.ID,
			EndedAt:    ended,
			Band:       r.Band,
			Stars:      r.Stars,
			Words:      r.Words,
			Correct:    r.Correct,
			Incorrect:  r.Incorrect,
			BestStreak: r.BestStreak,
			DurationMs: r.DurationMs,
		})
	}
	return sessions, nil
}

// ListWordAggregatesForSessions aggregates per-word tallies across sessions.
func (s *Store) ListWordAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.WordAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT word, SUM(correct) AS correct, SUM(incorrect) AS incorrect
		FROM session_word_stats
		WHERE session_id IN (?)
		GROUP BY word`, sessionIDs)
	if err != nil {
		return nil, err
	}
	var result []model.WordAggregate
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return result, nil
}

type sessionWordRow struct {
	SessionID int64 `db:"session_id"`
	model.WordAggregate
}

// ListWordStatsForSessions returns per-session tallies for selected words.
func (s *Store) ListWordStatsForSessions(ctx context.Context, sessionIDs []int64, words []string) (map[int64]map[string]model.WordAggregate, error) {
	result := map[int64]map[string]model.WordAggregate{}
	if len(sessionIDs) == 0 || len(words) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT session_id, word, correct, incorrect
		FROM session_word_stats
		WHERE session_id IN (?) AND word IN (?)`, sessionIDs, words)
	if err != nil {
		return nil, err
	}
	var rows []sessionWordRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if _, ok := result[r.SessionID]; !ok {
			result[r.SessionID] = map[string]model.WordAggregate{}
		}
		result[r.SessionID][r.Word] = r.WordAggregate
	}
	return result, nil
}

// SaveSnapshot replaces the resumable session snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, data []byte, savedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (name, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		currentSnapshot, string(data), savedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// LoadSnapshot returns the saved snapshot, or nil when there is none.
func (s *Store) LoadSnapshot(ctx context.Context) ([]byte, error) {
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT data FROM snapshots WHERE name = ?`, currentSnapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// ClearSnapshot removes the saved snapshot.
func (s *Store) ClearSnapshot(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, currentSnapshot)
	return err
}
