package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aldersync/voice-core/internal/infrastructure/database"
)

// Stage identifies how far through the pipeline a command travelled.
type Stage string

// Pipeline stages in execution order.
const (
	StageValidate Stage = "validate"
	StageClassify Stage = "classify"
	StageResolve  Stage = "resolve"
	StageAdmit    Stage = "admit"
	StageDispatch Stage = "dispatch"
)

// Event is one audit record. Exactly one event is written per pipeline
// run, successful or not, carrying the furthest stage reached.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Intent    string    `json:"intent"`
	EntityID  string    `json:"entity_id"`
	Stage     Stage     `json:"stage"`
	Outcome   string    `json:"outcome"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	SessionID string
	Intent    string
	Outcome   string
	Limit     int
}

// defaultListLimit bounds unfiltered listings.
const defaultListLimit = 100

// Repository defines audit trail persistence operations.
type Repository interface {
	// Create stores one audit event. ID and CreatedAt are assigned if unset.
	Create(ctx context.Context, event *Event) error

	// List returns events matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Event, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a SQLite-backed audit repository.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create stores one audit event.
func (r *SQLiteRepository) Create(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, session_id, intent, entity_id, stage, outcome, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.SessionID, event.Intent, event.EntityID,
		string(event.Stage), event.Outcome, event.Details,
		event.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("creating audit event: %w", err)
	}
	return nil
}

// List returns events matching the filter, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) ([]Event, error) {
	query := `
		SELECT id, session_id, intent, entity_id, stage, outcome, details, created_at
		FROM audit_logs WHERE 1=1`
	args := []any{}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.Intent != "" {
		query += " AND intent = ?"
		args = append(args, filter.Intent)
	}
	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filter.Outcome)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query cleanup

	var events []Event
	for rows.Next() {
		var (
			e         Event
			stage     string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Intent, &e.EntityID,
			&stage, &e.Outcome, &e.Details, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		e.Stage = Stage(stage)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing audit timestamp: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit events: %w", err)
	}

	return events, nil
}
