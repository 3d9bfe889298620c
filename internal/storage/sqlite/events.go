package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/pkg/log"
	"github.com/shaswatnaman/Nirnay-112/pkg/retry"
)

// EventsRepo persists audit events. It implements core.EventSink: recording
// failures are logged and swallowed so storage trouble never blocks a
// decision.
type EventsRepo struct {
	db      *sql.DB
	retrier *retry.Retrier
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{
		db: db,
		// short fuse: inserts sit on the decision path, so only absorb
		// brief lock contention
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    2,
			BackoffFactor: 2,
			InitialDelay:  25 * time.Millisecond,
			MaxDelay:      100 * time.Millisecond,
			Jitter:        10 * time.Millisecond,
		}),
	}
}

func (r *EventsRepo) Record(ctx context.Context, event core.Event) {
	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("event_type", event.Type).Msg("failed to marshal event payload")
		return
	}

	// "null" for an empty payload wastes space, store an empty string
	payload := string(payloadJSON)
	if payload == "null" {
		payload = ""
	}

	query := `INSERT INTO events (session_id, event_type, payload, created_at) VALUES (?, ?, ?, ?)`
	err = r.retrier.Do(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, event.SessionID, event.Type, payload, event.Timestamp)
		return execErr
	})
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).
			Str("session_id", event.SessionID).
			Str("event_type", event.Type).
			Msg("failed to persist event")
	}
}

// Events returns the last 'limit' events for a session in chronological
// order.
func (r *EventsRepo) Events(ctx context.Context, sessionID string, limit int) ([]core.Event, error) {
	query := `SELECT event_type, payload, created_at FROM events WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		event := core.Event{SessionID: sessionID}
		var payload sql.NullString

		if err := rows.Scan(&event.Type, &payload, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if payload.Valid && payload.String != "" {
			if err := json.Unmarshal([]byte(payload.String), &event.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// the query returned newest first, flip back to chronological order
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}
