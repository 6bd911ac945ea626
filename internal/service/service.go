// Package service holds the content-and-membership graph logic: every
// operation that touches more than one entity kind lives here, sequenced as
// idempotent store steps so a partially applied mutation can be re-run.
package service

import (
	"context"

	"github.com/firepit/infernos/internal/cult"
	"github.com/firepit/infernos/internal/domain"
	"github.com/firepit/infernos/internal/inferno"
	"github.com/firepit/infernos/internal/revalidate"
	"github.com/firepit/infernos/internal/user"
	"go.uber.org/zap"
)

type Service struct {
	users    user.UserStorage
	infernos inferno.InfernoStorage
	cults    cult.CultStorage
	reval    revalidate.Manager
	log      *zap.Logger
}

func New(users user.UserStorage, infernos inferno.InfernoStorage, cults cult.CultStorage, reval revalidate.Manager, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:    users,
		infernos: infernos,
		cults:    cults,
		reval:    reval,
		log:      log,
	}
}

// SyncUser upserts a user from the external identity provider and marks them
// onboarded. The core trusts the resolver's profile fields as-is.
func (s *Service) SyncUser(ctx context.Context, key, username, name, image, bio, path string) (*domain.User, error) {
	if key == "" {
		return nil, domain.Invalid("user key must not be empty")
	}
	if username == "" {
		return nil, domain.Invalid("username must not be empty")
	}

	u, err := s.users.UpsertUser(ctx, key, username, name, image, bio)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, path)
	return u, nil
}

func (s *Service) FetchUser(key string) (*domain.User, error) {
	return s.users.GetUserByKey(key)
}

func (s *Service) invalidate(ctx context.Context, path string) {
	if path == "" || s.reval == nil {
		return
	}
	s.reval.Invalidate(ctx, path)
}

// authorSummary tolerates a dangling author reference: a missing user record
// yields a bare summary instead of failing the whole read.
func (s *Service) authorSummary(authorID string) domain.Author {
	u, err := s.users.GetUserByID(authorID)
	if err != nil {
		return domain.Author{ID: authorID}
	}
	return userSummary(u)
}

func userSummary(u *domain.User) domain.Author {
	return domain.Author{
		ID:       u.ID,
		Key:      u.Key,
		Username: u.Username,
		Name:     u.Name,
		Image:    u.Image,
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
