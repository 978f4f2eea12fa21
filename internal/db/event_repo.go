package db

import (
	"context"
	"time"

	"firebay/internal/types"
)

// defaultListLimit applies when the caller passes a non-positive limit.
const defaultListLimit = 100

// EventRepository provides data access for the detected_events table.
type EventRepository struct {
	db DBTX
}

// NewEventRepository creates an EventRepository backed by the given
// connection (pool or transaction).
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// Insert records a detected event. The caller must set the ID and all
// descriptive fields; a zero OccurredAt defaults to NOW() in the database.
func (r *EventRepository) Insert(ctx context.Context, event *types.DetectedEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO detected_events
		 (id, occurred_at, kind, severity, sector, status)
		 VALUES ($1, COALESCE($2, NOW()), $3, $4, $5, $6)`,
		event.ID,
		nilIfZeroTime(event.OccurredAt),
		string(event.Kind),
		string(event.Severity),
		event.Sector,
		string(event.Status),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert detected event", err)
	}
	return nil
}

// List returns the most recent events, newest first.
func (r *EventRepository) List(ctx context.Context, limit int) ([]types.DetectedEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, occurred_at, kind, severity, sector, status
		 FROM detected_events
		 ORDER BY occurred_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list detected events", err)
	}
	defer rows.Close()

	var events []types.DetectedEvent
	for rows.Next() {
		var (
			e        types.DetectedEvent
			kind     string
			severity string
			status   string
		)
		if err := rows.Scan(&e.ID, &e.OccurredAt, &kind, &severity, &e.Sector, &status); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan detected event", err)
		}
		e.Kind = types.EventKind(kind)
		e.Severity = types.RiskLevel(severity)
		e.Status = types.EventStatus(status)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate detected events", err)
	}

	return events, nil
}

// Prune deletes events older than the cutoff and returns how many rows went
// away. Called periodically to enforce the retention window.
func (r *EventRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM detected_events WHERE occurred_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to prune detected events", err)
	}
	return tag.RowsAffected(), nil
}

// nilIfZeroTime maps a zero time to nil so the database DEFAULT applies.
func nilIfZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
