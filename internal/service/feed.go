package service

import (
	"github.com/firepit/infernos/internal/domain"
)

const defaultPageSize = 20

// FetchPosts pages over top-level infernos, newest first. Each item carries
// its resolved author and one level of resolved children.
func (s *Service) FetchPosts(pageNumber, pageSize int) (*domain.InfernoPage, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	offset := (pageNumber - 1) * pageSize

	items, err := s.infernos.ListTopLevel(offset, pageSize)
	if err != nil {
		return nil, err
	}

	nodes := make([]*domain.InfernoNode, 0, len(items))
	for _, in := range items {
		node, err := s.resolveNode(in, 1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	total, err := s.infernos.CountTopLevel()
	if err != nil {
		return nil, err
	}

	return &domain.InfernoPage{
		Items:   nodes,
		HasMore: total > offset+len(items),
	}, nil
}

// FetchCults pages over cults matched by a case-insensitive substring of name
// or username, in creation order per the filter. Member lists are resolved.
func (s *Service) FetchCults(f domain.CultFilter) (*domain.CultPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	offset := (f.Page - 1) * f.PageSize

	cults, err := s.cults.ListCults(f.Search, f.SortAsc, offset, f.PageSize)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.CultView, 0, len(cults))
	for _, c := range cults {
		views = append(views, s.cultView(c))
	}

	total, err := s.cults.CountCults(f.Search)
	if err != nil {
		return nil, err
	}

	return &domain.CultPage{
		Items:   views,
		HasMore: total > offset+len(cults),
	}, nil
}

// FetchUserPosts lists an account's infernos. For a user account every node
// carries the owner as the uniform author; for a cult account each inferno
// resolves its own author.
func (s *Service) FetchUserPosts(accountKey string, accountType domain.AccountType) ([]*domain.InfernoNode, error) {
	switch accountType {
	case domain.AccountCult:
		c, err := s.cults.GetCultByKey(accountKey)
		if err != nil {
			return nil, err
		}
		items, err := s.infernos.ListByCult(c.ID)
		if err != nil {
			return nil, err
		}
		return s.resolveNodes(items, nil)

	case domain.AccountUser:
		u, err := s.users.GetUserByKey(accountKey)
		if err != nil {
			return nil, err
		}
		items, err := s.infernos.ListByAuthor(u.ID)
		if err != nil {
			return nil, err
		}
		owner := userSummary(u)
		return s.resolveNodes(items, &owner)

	default:
		return nil, domain.Invalid("unknown account type " + string(accountType))
	}
}

func (s *Service) resolveNodes(items []*domain.Inferno, uniformAuthor *domain.Author) ([]*domain.InfernoNode, error) {
	nodes := make([]*domain.InfernoNode, 0, len(items))
	for _, in := range items {
		node, err := s.resolveNode(in, 1)
		if err != nil {
			return nil, err
		}
		if uniformAuthor != nil {
			node.Author = *uniformAuthor
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
