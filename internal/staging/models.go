// Package staging holds submitted-but-unverified scores and their review
// state machine.
//
// A staging score keeps its full per-range/per-end/per-arrow breakdown as a
// single structured blob: it is provisional, write-once-read-rarely data.
// On approval the breakdown is normalized into the official Score/End/Arrow
// hierarchy and the staging record becomes inert.
package staging

import (
	"time"

	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

// Status is the review state of a submission. pending is the only state
// that permits transitions; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// StagingScore is an archer's self-reported score awaiting verification.
//
// Invariants:
//   - RawScore always equals the recomputed total of Breakdown; both are
//     derived server-side at submission, never trusted from the client
//   - SubmittedAt is server time, regardless of client-supplied values
//   - Status transitions: pending -> approved, pending -> rejected, nothing
//     else; a corrected score is a new submission
//   - RejectionReason is set exactly when Status is rejected
type StagingScore struct {
	ID              id.StagingScoreID     `json:"id"`
	ArcherID        id.ArcherID           `json:"archer_id"`
	RoundID         id.RoundID            `json:"round_id"`
	EquipmentID     id.EquipmentID        `json:"equipment_id"`
	SubmittedAt     time.Time             `json:"submitted_at"`
	RawScore        int                   `json:"raw_score"`
	Status          Status                `json:"status"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	Breakdown       []scoring.RangeScores `json:"breakdown"`
	ResolvedAt      *time.Time            `json:"resolved_at,omitempty"`
}

// CanApprove checks the approval guard. A second approval is rejected
// loudly rather than treated as a no-op, and a rejected record cannot be
// resurrected.
func (s *StagingScore) CanApprove() error {
	switch s.Status {
	case StatusApproved:
		return dErrors.New(dErrors.CodeAlreadyApproved, "staging score is already approved")
	case StatusRejected:
		return dErrors.New(dErrors.CodeAlreadyResolved, "staging score was already rejected")
	}
	return nil
}

// ApplyApproval transitions the record to approved. Call CanApprove first;
// the pair is meant for the store's Execute callback so the check and the
// write happen under one lock.
func (s *StagingScore) ApplyApproval(now time.Time) {
	s.Status = StatusApproved
	s.ResolvedAt = &now
}

// CanReject checks the rejection guard. Re-rejecting or rejecting an
// approved record fails with a conflict instead of silently overwriting a
// terminal state.
func (s *StagingScore) CanReject() error {
	if s.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeAlreadyResolved,
			"staging score is already %s", s.Status)
	}
	return nil
}

// ApplyRejection transitions the record to rejected and keeps the
// recorder's reason as part of the audit trail.
func (s *StagingScore) ApplyRejection(reason string, now time.Time) {
	s.Status = StatusRejected
	s.RejectionReason = reason
	s.ResolvedAt = &now
}

// ReviewItem is the read-side view of a pending submission with display
// names joined on at query time. Names are never stored on the record.
type ReviewItem struct {
	*StagingScore
	ArcherName    string `json:"archer_name"`
	RoundName     string `json:"round_name"`
	EquipmentName string `json:"equipment_name"`
	// UnknownRangeIDs flags breakdown ranges that are not part of the round
	// definition. Submission accepts them, since clubs shoot adapted
	// formats; the recorder sees the flag and decides.
	UnknownRangeIDs []string `json:"unknown_range_ids,omitempty"`
}
