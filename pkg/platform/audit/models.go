// Package audit records who did what to which score record. Events are
// append-only; the postgres store writes them to a transactional outbox so
// an audit entry commits atomically with the state change it describes.
package audit

import (
	"context"
	"time"
)

// Action names an auditable state change.
type Action string

const (
	ActionScoreSubmitted Action = "staging_score_submitted"
	ActionScoreApproved  Action = "staging_score_approved"
	ActionScoreRejected  Action = "staging_score_rejected"
	ActionScoreDeleted   Action = "staging_score_deleted"
	ActionScoreCreated   Action = "official_score_created"
)

// Event is one audit record. Actor is the authenticated caller; Subject is
// the record acted upon. Detail carries action-specific context such as a
// rejection reason.
type Event struct {
	Action    Action    `json:"action"`
	ActorID   string    `json:"actor_id,omitempty"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
