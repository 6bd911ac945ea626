package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/firepit/infernos/internal/domain"
)

type InfernoMemoryStorage struct {
	mu       sync.Mutex
	infernos map[string]*domain.Inferno
	nextID   int
}

func NewInfernoMemoryStorage() *InfernoMemoryStorage {
	return &InfernoMemoryStorage{
		infernos: make(map[string]*domain.Inferno),
		nextID:   1,
	}
}

func (s *InfernoMemoryStorage) CreateInferno(ctx context.Context, in *domain.Inferno) (*domain.Inferno, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextID)
	s.nextID++

	stored := &domain.Inferno{
		ID:        id,
		Text:      in.Text,
		AuthorID:  in.AuthorID,
		CultID:    in.CultID,
		CreatedAt: time.Now(),
		ParentID:  in.ParentID,
		ChildIDs:  []string{},
	}
	s.infernos[id] = stored

	return cloneInferno(stored), nil
}

func (s *InfernoMemoryStorage) GetInfernoByID(id string) (*domain.Inferno, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, exists := s.infernos[id]
	if !exists {
		return nil, domain.NotFound("inferno", id)
	}
	return cloneInferno(in), nil
}

func (s *InfernoMemoryStorage) AppendChild(ctx context.Context, parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, exists := s.infernos[parentID]
	if !exists {
		return domain.NotFound("inferno", parentID)
	}
	if !contains(parent.ChildIDs, childID) {
		parent.ChildIDs = append(parent.ChildIDs, childID)
	}
	return nil
}

func (s *InfernoMemoryStorage) ListTopLevel(offset, limit int) ([]*domain.Inferno, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var roots []*domain.Inferno
	for _, in := range s.infernos {
		if in.ParentID == "" {
			roots = append(roots, in)
		}
	}
	sortNewestFirst(roots)

	if offset >= len(roots) {
		return []*domain.Inferno{}, nil
	}
	end := offset + limit
	if end > len(roots) {
		end = len(roots)
	}

	page := make([]*domain.Inferno, 0, end-offset)
	for _, in := range roots[offset:end] {
		page = append(page, cloneInferno(in))
	}
	return page, nil
}

func (s *InfernoMemoryStorage) CountTopLevel() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, in := range s.infernos {
		if in.ParentID == "" {
			count++
		}
	}
	return count, nil
}

func (s *InfernoMemoryStorage) ListByAuthor(authorID string) ([]*domain.Inferno, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Inferno
	for _, in := range s.infernos {
		if in.AuthorID == authorID {
			result = append(result, in)
		}
	}
	sortNewestFirst(result)

	cloned := make([]*domain.Inferno, 0, len(result))
	for _, in := range result {
		cloned = append(cloned, cloneInferno(in))
	}
	return cloned, nil
}

func (s *InfernoMemoryStorage) ListByCult(cultID string) ([]*domain.Inferno, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Inferno
	for _, in := range s.infernos {
		if in.CultID == cultID {
			result = append(result, in)
		}
	}
	sortOldestFirst(result)

	cloned := make([]*domain.Inferno, 0, len(result))
	for _, in := range result {
		cloned = append(cloned, cloneInferno(in))
	}
	return cloned, nil
}

func (s *InfernoMemoryStorage) DeleteByCult(ctx context.Context, cultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, in := range s.infernos {
		if in.CultID == cultID {
			delete(s.infernos, id)
		}
	}
	return nil
}

func cloneInferno(in *domain.Inferno) *domain.Inferno {
	c := *in
	c.ChildIDs = append([]string(nil), in.ChildIDs...)
	return &c
}

// Creation order decides ties: sequential IDs compare numerically.
func sortNewestFirst(ins []*domain.Inferno) {
	sort.Slice(ins, func(i, j int) bool {
		if ins[i].CreatedAt.Equal(ins[j].CreatedAt) {
			return numericID(ins[i].ID) > numericID(ins[j].ID)
		}
		return ins[i].CreatedAt.After(ins[j].CreatedAt)
	})
}

func sortOldestFirst(ins []*domain.Inferno) {
	sort.Slice(ins, func(i, j int) bool {
		if ins[i].CreatedAt.Equal(ins[j].CreatedAt) {
			return numericID(ins[i].ID) < numericID(ins[j].ID)
		}
		return ins[i].CreatedAt.Before(ins[j].CreatedAt)
	})
}

func numericID(id string) int {
	n, _ := strconv.Atoi(id)
	return n
}
