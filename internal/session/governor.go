package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aldersync/voice-core/internal/infrastructure/config"
	"github.com/aldersync/voice-core/internal/infrastructure/database"
)

// timeFormat is the storage format for session timestamps.
const timeFormat = time.RFC3339Nano

// Governor admits commands into sessions, enforcing the per-session
// quota, idle window, and maximum duration. All state lives in the
// sessions table; the read-modify-write on each admit is applied inside
// a single transaction with a conditional update, so two concurrent
// commands can never both pass a quota boundary they should not.
type Governor struct {
	db  *database.DB
	cfg config.SessionConfig

	// now is replaced in tests to control the clock.
	now func() time.Time
}

// NewGovernor creates a governor backed by the given database.
func NewGovernor(db *database.DB, cfg config.SessionConfig) *Governor {
	return &Governor{
		db:  db,
		cfg: cfg,
		now: time.Now,
	}
}

// Admit records one command against the session, creating the session
// on first sight.
//
// An admit fails with ErrSessionExpired if the idle window or the
// maximum session duration has elapsed (the record is deleted so the ID
// can be reused as a fresh session), or with ErrQuotaExceeded once the
// command cap is reached. A failed admit never increments the count.
//
// This gate runs strictly before any controller-bound call is issued.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - sessionID: Opaque session identifier
//
// Returns:
//   - Session: Post-admit session state (count already incremented)
//   - error: ErrSessionExpired, ErrQuotaExceeded, or a storage error
func (g *Governor) Admit(ctx context.Context, sessionID string) (Session, error) {
	now := g.now().UTC()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after successful commit

	// First sight creates the record; an existing row is left alone.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, command_count, created_at, last_seen_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		sessionID, now.Format(timeFormat), now.Format(timeFormat),
	); err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}

	current, err := scanSession(tx.QueryRowContext(ctx, `
		SELECT id, command_count, created_at, last_seen_at
		FROM sessions WHERE id = ?`, sessionID))
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	if now.Sub(current.LastSeenAt) > g.cfg.IdleWindow() || now.Sub(current.CreatedAt) > g.cfg.MaxDuration() {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
			return Session{}, fmt.Errorf("deleting expired session: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return Session{}, fmt.Errorf("committing expiry: %w", err)
		}
		return Session{}, fmt.Errorf("%w: start a new session", ErrSessionExpired)
	}

	// Conditional update: only rows still under the cap are advanced.
	res, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET command_count = command_count + 1, last_seen_at = ?
		WHERE id = ? AND command_count < ?`,
		now.Format(timeFormat), sessionID, g.cfg.MaxCommands,
	)
	if err != nil {
		return Session{}, fmt.Errorf("updating session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Session{}, fmt.Errorf("checking session update: %w", err)
	}
	if affected == 0 {
		return Session{}, fmt.Errorf("%w: %d commands used, wait for the session to expire or start a new one",
			ErrQuotaExceeded, current.CommandCount)
	}

	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("committing admit: %w", err)
	}

	current.CommandCount++
	current.LastSeenAt = now
	return current, nil
}

// PurgeExpired deletes all sessions whose idle window or maximum
// duration has elapsed. Intended to run periodically so abandoned
// sessions do not accumulate.
//
// Returns:
//   - int: Number of sessions deleted
//   - error: If the delete fails
func (g *Governor) PurgeExpired(ctx context.Context) (int, error) {
	now := g.now().UTC()
	idleCutoff := now.Add(-g.cfg.IdleWindow()).Format(timeFormat)
	durationCutoff := now.Add(-g.cfg.MaxDuration()).Format(timeFormat)

	res, err := g.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE last_seen_at < ? OR created_at < ?",
		idleCutoff, durationCutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purging expired sessions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged sessions: %w", err)
	}
	return int(affected), nil
}

// Get returns the current state of a session, or false if it does not
// exist.
func (g *Governor) Get(ctx context.Context, sessionID string) (Session, bool, error) {
	s, err := scanSession(g.db.QueryRowContext(ctx, `
		SELECT id, command_count, created_at, last_seen_at
		FROM sessions WHERE id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("reading session: %w", err)
	}
	return s, true, nil
}

// scanSession reads one session row.
func scanSession(row *sql.Row) (Session, error) {
	var (
		s                    Session
		createdAt, lastSeen string
	)
	if err := row.Scan(&s.ID, &s.CommandCount, &createdAt, &lastSeen); err != nil {
		return Session{}, err
	}

	var err error
	if s.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return Session{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.LastSeenAt, err = time.Parse(timeFormat, lastSeen); err != nil {
		return Session{}, fmt.Errorf("parsing last_seen_at: %w", err)
	}
	return s, nil
}
