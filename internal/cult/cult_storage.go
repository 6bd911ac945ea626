package cult

import (
	"context"

	"github.com/firepit/infernos/internal/domain"
)

// CultStorage persists cults. Membership and inferno references are mutated
// through verb-level idempotent operations; the membership-duplicate check
// lives in the service layer, which sees the fetched record first.
type CultStorage interface {
	// CreateCult fails with domain.ErrConflict when the external key or the
	// username is already taken.
	CreateCult(ctx context.Context, c *domain.Cult) (*domain.Cult, error)
	GetCultByKey(key string) (*domain.Cult, error)
	GetCultByID(id string) (*domain.Cult, error)
	UpdateCultInfo(ctx context.Context, key, name, username, image string) (*domain.Cult, error)
	AddMember(ctx context.Context, cultID, userID string) error
	RemoveMember(ctx context.Context, cultID, userID string) error
	AttachInferno(ctx context.Context, cultID, infernoID string) error
	// ListCults filters by case-insensitive substring match on name or
	// username (empty search matches all) and orders by creation time.
	ListCults(search string, sortAsc bool, offset, limit int) ([]*domain.Cult, error)
	CountCults(search string) (int, error)
	// DeleteCultByKey removes the cult record and returns it so the caller
	// can run the dependent cascade steps.
	DeleteCultByKey(ctx context.Context, key string) (*domain.Cult, error)
}
