package user

import (
	"context"

	"github.com/firepit/infernos/internal/domain"
)

// UserStorage persists users keyed by a store-assigned ID plus the external
// identity key. Attach/Detach operations are idempotent so the service layer
// can re-run multi-step mutations after a partial failure.
type UserStorage interface {
	// UpsertUser syncs a user from the identity provider and marks them
	// onboarded. Fails with domain.ErrConflict when the username is taken
	// by a different user.
	UpsertUser(ctx context.Context, key, username, name, image, bio string) (*domain.User, error)
	GetUserByKey(key string) (*domain.User, error)
	GetUserByID(id string) (*domain.User, error)
	// AttachInferno records infernoID in the user's authored set.
	AttachInferno(ctx context.Context, userID, infernoID string) error
	AttachCult(ctx context.Context, userID, cultID string) error
	// DetachCult succeeds even when the reference is already absent.
	DetachCult(ctx context.Context, userID, cultID string) error
	// ListByCult returns every user whose cult set contains cultID.
	ListByCult(cultID string) ([]*domain.User, error)
}
