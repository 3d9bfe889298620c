package core

import (
	"context"
	"time"
)

// Event types recorded on the audit trail.
const (
	EventTranscriptionReceived = "transcription_received"
	EventContextUpdated        = "context_updated"
	EventEscalationTriggered   = "escalation_triggered"
	EventRollbackOccurred      = "rollback_occurred"
	EventPerceptionFailure     = "perception_failure"
)

// Event is one append-only audit record. Events are never modified after
// being recorded.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"event_type"`
	SessionID string                 `json:"session_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventSink receives audit events. Recording must never block the decision
// pipeline on failure; implementations log and move on.
type EventSink interface {
	Record(ctx context.Context, event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(ctx context.Context, event Event) {}
