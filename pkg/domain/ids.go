// Package domain holds typed identifiers shared across modules.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (an ArcherID can never be passed where a RoundID is expected).
// Construct IDs from external input via the Parse functions, which enforce
// the invariant that IDs are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "quiverbook/pkg/domain-errors"
)

type (
	// ArcherID identifies a club member who shoots and submits scores.
	ArcherID uuid.UUID
	// RoundID identifies a named scoring format (e.g. "WA 70m").
	RoundID uuid.UUID
	// RangeID identifies one distance/face segment within a round.
	RangeID uuid.UUID
	// EquipmentID identifies an equipment division (recurve, compound, ...).
	EquipmentID uuid.UUID
	// CompetitionID identifies a competition; absent means practice.
	CompetitionID uuid.UUID
	// StagingScoreID identifies an unapproved score submission.
	StagingScoreID uuid.UUID
	// ScoreID identifies an official, verified score.
	ScoreID uuid.UUID
	// EndID identifies one official end within a score.
	EndID uuid.UUID
)

func (id ArcherID) String() string      { return uuid.UUID(id).String() }
func (id RoundID) String() string       { return uuid.UUID(id).String() }
func (id RangeID) String() string       { return uuid.UUID(id).String() }
func (id EquipmentID) String() string   { return uuid.UUID(id).String() }
func (id CompetitionID) String() string { return uuid.UUID(id).String() }

func (id StagingScoreID) String() string { return uuid.UUID(id).String() }
func (id ScoreID) String() string        { return uuid.UUID(id).String() }
func (id EndID) String() string          { return uuid.UUID(id).String() }

func (id ArcherID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RoundID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id RangeID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id EquipmentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CompetitionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id StagingScoreID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ScoreID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", what)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is not a valid id", what)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must not be the nil id", what)
	}
	return parsed, nil
}

// ParseArcherID validates external input into an ArcherID.
func ParseArcherID(raw string) (ArcherID, error) {
	u, err := parseUUID(raw, "archer id")
	return ArcherID(u), err
}

// ParseRoundID validates external input into a RoundID.
func ParseRoundID(raw string) (RoundID, error) {
	u, err := parseUUID(raw, "round id")
	return RoundID(u), err
}

// ParseRangeID validates external input into a RangeID.
func ParseRangeID(raw string) (RangeID, error) {
	u, err := parseUUID(raw, "range id")
	return RangeID(u), err
}

// ParseEquipmentID validates external input into an EquipmentID.
func ParseEquipmentID(raw string) (EquipmentID, error) {
	u, err := parseUUID(raw, "equipment id")
	return EquipmentID(u), err
}

// ParseCompetitionID validates external input into a CompetitionID.
func ParseCompetitionID(raw string) (CompetitionID, error) {
	u, err := parseUUID(raw, "competition id")
	return CompetitionID(u), err
}

// ParseStagingScoreID validates external input into a StagingScoreID.
func ParseStagingScoreID(raw string) (StagingScoreID, error) {
	u, err := parseUUID(raw, "staging score id")
	return StagingScoreID(u), err
}

// ParseScoreID validates external input into a ScoreID.
func ParseScoreID(raw string) (ScoreID, error) {
	u, err := parseUUID(raw, "score id")
	return ScoreID(u), err
}

// The IDs marshal as their canonical UUID string so JSON bodies and JSONB
// columns carry text, not byte arrays. Unmarshal accepts any valid UUID,
// including nil: round-tripping a zero value must not error.

func (id ArcherID) MarshalText() ([]byte, error)      { return marshalID(uuid.UUID(id)) }
func (id RoundID) MarshalText() ([]byte, error)       { return marshalID(uuid.UUID(id)) }
func (id RangeID) MarshalText() ([]byte, error)       { return marshalID(uuid.UUID(id)) }
func (id EquipmentID) MarshalText() ([]byte, error)   { return marshalID(uuid.UUID(id)) }
func (id CompetitionID) MarshalText() ([]byte, error) { return marshalID(uuid.UUID(id)) }

func (id StagingScoreID) MarshalText() ([]byte, error) { return marshalID(uuid.UUID(id)) }
func (id ScoreID) MarshalText() ([]byte, error)        { return marshalID(uuid.UUID(id)) }
func (id EndID) MarshalText() ([]byte, error)          { return marshalID(uuid.UUID(id)) }

func (id *ArcherID) UnmarshalText(b []byte) error      { return unmarshalID((*uuid.UUID)(id), b) }
func (id *RoundID) UnmarshalText(b []byte) error       { return unmarshalID((*uuid.UUID)(id), b) }
func (id *RangeID) UnmarshalText(b []byte) error       { return unmarshalID((*uuid.UUID)(id), b) }
func (id *EquipmentID) UnmarshalText(b []byte) error   { return unmarshalID((*uuid.UUID)(id), b) }
func (id *CompetitionID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func (id *StagingScoreID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }
func (id *ScoreID) UnmarshalText(b []byte) error        { return unmarshalID((*uuid.UUID)(id), b) }
func (id *EndID) UnmarshalText(b []byte) error          { return unmarshalID((*uuid.UUID)(id), b) }

func marshalID(u uuid.UUID) ([]byte, error) {
	return []byte(u.String()), nil
}

func unmarshalID(dst *uuid.UUID, b []byte) error {
	parsed, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}
