package service

import (
	"context"
	"fmt"

	"github.com/firepit/infernos/internal/domain"
	"go.uber.org/zap"
)

// DeleteCult removes a cult and everything that depends on it: (a) the cult
// record, (b) every inferno belonging to it, (c) the cult reference in every
// member's roster. The steps are not atomic; each is idempotent, and any
// sub-step failure is surfaced as a PartialFailure so the caller can re-run
// the cascade from the top.
func (s *Service) DeleteCult(ctx context.Context, cultKey, path string) (*domain.Cult, error) {
	deleted, err := s.cults.DeleteCultByKey(ctx, cultKey)
	if err != nil {
		return nil, err
	}

	var errs []error
	if err := s.infernos.DeleteByCult(ctx, deleted.ID); err != nil {
		errs = append(errs, fmt.Errorf("delete cult infernos: %w", err))
	}

	members, err := s.users.ListByCult(deleted.ID)
	if err != nil {
		errs = append(errs, fmt.Errorf("list roster holders: %w", err))
	}
	for _, u := range members {
		if err := s.users.DetachCult(ctx, u.ID, deleted.ID); err != nil {
			errs = append(errs, fmt.Errorf("detach cult from user %q: %w", u.ID, err))
		}
	}

	if len(errs) > 0 {
		s.log.Warn("cult cascade incomplete",
			zap.String("cult_key", cultKey), zap.Errors("steps", errs))
		return deleted, domain.Partial("delete cult", errs...)
	}

	s.invalidate(ctx, path)
	return deleted, nil
}
