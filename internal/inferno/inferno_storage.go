package inferno

import (
	"context"

	"github.com/firepit/infernos/internal/domain"
)

// InfernoStorage persists infernos. The store assigns IDs and creation
// timestamps; linking a reply into its parent's child sequence is a separate
// idempotent step (AppendChild), mirroring the two-write create flow above it.
type InfernoStorage interface {
	CreateInferno(ctx context.Context, in *domain.Inferno) (*domain.Inferno, error)
	GetInfernoByID(id string) (*domain.Inferno, error)
	// AppendChild adds childID to the parent's child sequence, preserving
	// insertion order. Appending an already-linked child is a no-op.
	AppendChild(ctx context.Context, parentID, childID string) error
	// ListTopLevel returns infernos with no parent, newest first.
	ListTopLevel(offset, limit int) ([]*domain.Inferno, error)
	CountTopLevel() (int, error)
	ListByAuthor(authorID string) ([]*domain.Inferno, error)
	ListByCult(cultID string) ([]*domain.Inferno, error)
	// DeleteByCult removes every inferno belonging to cultID. Deleting an
	// already-deleted set is a no-op.
	DeleteByCult(ctx context.Context, cultID string) error
}
