// Package equipment defines the equipment divisions archers shoot in.
package equipment

import (
	"context"
	"strings"

	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

// Equipment is a division such as recurve, compound, or barebow.
type Equipment struct {
	ID   id.EquipmentID `json:"id"`
	Name string         `json:"name"`
}

func NewEquipment(equipmentID id.EquipmentID, name string) (*Equipment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "equipment name is required")
	}
	return &Equipment{ID: equipmentID, Name: name}, nil
}

// Store abstracts equipment persistence. Names are unique case-insensitively;
// implementations return sentinel.ErrAlreadyUsed on a duplicate.
type Store interface {
	Create(ctx context.Context, equipment *Equipment) error
	FindByID(ctx context.Context, equipmentID id.EquipmentID) (*Equipment, error)
	List(ctx context.Context) ([]*Equipment, error)
}
