package service

import (
	"errors"

	"github.com/firepit/infernos/internal/domain"
)

// DefaultReplyDepth expands the root plus two reply levels (direct replies
// and their replies), matching the single-inferno page.
const DefaultReplyDepth = 2

// FetchInferno resolves an inferno and its reply tree to the given depth
// (number of child levels to expand; depth < 1 means DefaultReplyDepth).
// Child order follows the stored child sequence.
func (s *Service) FetchInferno(id string, depth int) (*domain.InfernoNode, error) {
	if depth < 1 {
		depth = DefaultReplyDepth
	}
	root, err := s.infernos.GetInfernoByID(id)
	if err != nil {
		return nil, err
	}
	return s.resolveNode(root, depth)
}

func (s *Service) resolveNode(in *domain.Inferno, depth int) (*domain.InfernoNode, error) {
	node := &domain.InfernoNode{
		ID:        in.ID,
		Text:      in.Text,
		Author:    s.authorSummary(in.AuthorID),
		CultID:    in.CultID,
		CreatedAt: in.CreatedAt,
		ParentID:  in.ParentID,
		Children:  []*domain.InfernoNode{},
	}
	if depth <= 0 {
		return node, nil
	}

	for _, childID := range in.ChildIDs {
		child, err := s.infernos.GetInfernoByID(childID)
		if err != nil {
			// a dangling child reference is skipped, not fatal
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		childNode, err := s.resolveNode(child, depth-1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// FetchCultDetails resolves a cult together with its creator and member
// summaries.
func (s *Service) FetchCultDetails(key string) (*domain.CultView, error) {
	c, err := s.cults.GetCultByKey(key)
	if err != nil {
		return nil, err
	}
	return s.cultView(c), nil
}

// FetchCultPosts resolves a cult's feed: each inferno with its author and one
// level of author-resolved children.
func (s *Service) FetchCultPosts(key string) (*domain.CultPosts, error) {
	c, err := s.cults.GetCultByKey(key)
	if err != nil {
		return nil, err
	}

	nodes := make([]*domain.InfernoNode, 0, len(c.InfernoIDs))
	for _, id := range c.InfernoIDs {
		in, err := s.infernos.GetInfernoByID(id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		node, err := s.resolveNode(in, 1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return &domain.CultPosts{Cult: s.cultView(c), Infernos: nodes}, nil
}

func (s *Service) cultView(c *domain.Cult) *domain.CultView {
	members := make([]*domain.Author, 0, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		a := s.authorSummary(id)
		members = append(members, &a)
	}
	return &domain.CultView{
		ID:        c.ID,
		Key:       c.Key,
		Username:  c.Username,
		Name:      c.Name,
		Image:     c.Image,
		Bio:       c.Bio,
		CreatedBy: s.authorSummary(c.CreatedByID),
		Members:   members,
	}
}
