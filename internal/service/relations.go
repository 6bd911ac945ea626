package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/firepit/infernos/internal/domain"
	"go.uber.org/zap"
)

// CreateInferno creates a top-level inferno and links it into the author's
// authored set. When cultKey is given the inferno is also attached to that
// cult's feed. The create and the link writes are separate store steps; if a
// link step fails the created inferno is returned together with a
// PartialFailure so the caller can retry the operation.
func (s *Service) CreateInferno(ctx context.Context, text, authorKey, cultKey, path string) (*domain.Inferno, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalid("inferno text must not be empty")
	}

	author, err := s.users.GetUserByKey(authorKey)
	if err != nil {
		return nil, err
	}

	var cultID string
	if cultKey != "" {
		c, err := s.cults.GetCultByKey(cultKey)
		if err != nil {
			return nil, err
		}
		cultID = c.ID
	}

	created, err := s.infernos.CreateInferno(ctx, &domain.Inferno{
		Text:     text,
		AuthorID: author.ID,
		CultID:   cultID,
	})
	if err != nil {
		return nil, err
	}

	var errs []error
	if err := s.users.AttachInferno(ctx, author.ID, created.ID); err != nil {
		errs = append(errs, fmt.Errorf("attach to author %q: %w", author.ID, err))
	}
	if cultID != "" {
		if err := s.cults.AttachInferno(ctx, cultID, created.ID); err != nil {
			errs = append(errs, fmt.Errorf("attach to cult %q: %w", cultID, err))
		}
	}
	if len(errs) > 0 {
		s.log.Warn("inferno created with unlinked references",
			zap.String("inferno_id", created.ID), zap.Errors("steps", errs))
		return created, domain.Partial("create inferno", errs...)
	}

	s.invalidate(ctx, path)
	return created, nil
}

// AddComment creates a reply under an existing inferno and appends it to the
// parent's child sequence, preserving reply order.
func (s *Service) AddComment(ctx context.Context, infernoID, text, authorKey, path string) (*domain.Inferno, error) {
	parent, err := s.infernos.GetInfernoByID(infernoID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalid("comment text must not be empty")
	}

	author, err := s.users.GetUserByKey(authorKey)
	if err != nil {
		return nil, err
	}

	child, err := s.infernos.CreateInferno(ctx, &domain.Inferno{
		Text:     text,
		AuthorID: author.ID,
		ParentID: parent.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.infernos.AppendChild(ctx, parent.ID, child.ID); err != nil {
		s.log.Warn("comment created but not linked to parent",
			zap.String("inferno_id", child.ID), zap.String("parent_id", parent.ID), zap.Error(err))
		return child, domain.Partial("add comment", err)
	}

	s.invalidate(ctx, path)
	return child, nil
}

// CreateCult creates a cult owned by the resolved creator and adds it to the
// creator's cult roster. The creator does not become a member; membership is
// always an explicit join.
func (s *Service) CreateCult(ctx context.Context, key, name, username, image, bio, creatorKey string) (*domain.Cult, error) {
	if key == "" || name == "" || username == "" {
		return nil, domain.Invalid("cult key, name and username must not be empty")
	}

	creator, err := s.users.GetUserByKey(creatorKey)
	if err != nil {
		return nil, err
	}

	created, err := s.cults.CreateCult(ctx, &domain.Cult{
		Key:         key,
		Username:    username,
		Name:        name,
		Image:       image,
		Bio:         bio,
		CreatedByID: creator.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.AttachCult(ctx, creator.ID, created.ID); err != nil {
		s.log.Warn("cult created but not in creator roster",
			zap.String("cult_id", created.ID), zap.String("user_id", creator.ID), zap.Error(err))
		return created, domain.Partial("create cult", err)
	}
	return created, nil
}

// JoinCult adds the user to the cult's member set and the cult to the user's
// roster. A duplicate join is rejected, not deduplicated.
func (s *Service) JoinCult(ctx context.Context, cultKey, userKey string) (*domain.Cult, error) {
	c, err := s.cults.GetCultByKey(cultKey)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByKey(userKey)
	if err != nil {
		return nil, err
	}

	if containsID(c.MemberIDs, u.ID) {
		// only a fully-linked duplicate is rejected; a half-applied join
		// (member set updated, roster not) is completed here so retrying
		// the same join converges
		if containsID(u.CultIDs, c.ID) {
			return nil, fmt.Errorf("user %q in cult %q: %w", userKey, cultKey, domain.ErrAlreadyMember)
		}
		if err := s.users.AttachCult(ctx, u.ID, c.ID); err != nil {
			return nil, domain.Partial("join cult", fmt.Errorf("attach cult to user: %w", err))
		}
		return s.cults.GetCultByID(c.ID)
	}

	var errs []error
	if err := s.cults.AddMember(ctx, c.ID, u.ID); err != nil {
		errs = append(errs, fmt.Errorf("add member: %w", err))
	}
	if err := s.users.AttachCult(ctx, u.ID, c.ID); err != nil {
		errs = append(errs, fmt.Errorf("attach cult to user: %w", err))
	}
	if len(errs) > 0 {
		return nil, domain.Partial("join cult", errs...)
	}

	return s.cults.GetCultByID(c.ID)
}

// LeaveCult removes the membership cross-references symmetrically. Both
// removals tolerate an already-absent reference, so re-running after a prior
// partial failure always converges.
func (s *Service) LeaveCult(ctx context.Context, userKey, cultKey string) error {
	u, err := s.users.GetUserByKey(userKey)
	if err != nil {
		return err
	}
	c, err := s.cults.GetCultByKey(cultKey)
	if err != nil {
		return err
	}

	var errs []error
	if err := s.cults.RemoveMember(ctx, c.ID, u.ID); err != nil {
		errs = append(errs, fmt.Errorf("remove member: %w", err))
	}
	if err := s.users.DetachCult(ctx, u.ID, c.ID); err != nil {
		errs = append(errs, fmt.Errorf("detach cult from user: %w", err))
	}
	if len(errs) > 0 {
		return domain.Partial("leave cult", errs...)
	}
	return nil
}

// UpdateCultInfo is a pure field update on the cult profile.
func (s *Service) UpdateCultInfo(ctx context.Context, cultKey, name, username, image string) (*domain.Cult, error) {
	if name == "" || username == "" {
		return nil, domain.Invalid("cult name and username must not be empty")
	}
	return s.cults.UpdateCultInfo(ctx, cultKey, name, username, image)
}
