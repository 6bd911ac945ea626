package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/firepit/infernos/internal/domain"
)

type CultMemoryStorage struct {
	mu         sync.Mutex
	cults      map[string]*domain.Cult
	byKey      map[string]string
	byUsername map[string]string
	nextID     int
}

func NewCultMemoryStorage() *CultMemoryStorage {
	return &CultMemoryStorage{
		cults:      make(map[string]*domain.Cult),
		byKey:      make(map[string]string),
		byUsername: make(map[string]string),
		nextID:     1,
	}
}

func (s *CultMemoryStorage) CreateCult(ctx context.Context, c *domain.Cult) (*domain.Cult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[c.Key]; exists {
		return nil, domain.Conflict("cult", c.Key)
	}
	if _, exists := s.byUsername[c.Username]; exists {
		return nil, domain.Conflict("cult username", c.Username)
	}

	id := strconv.Itoa(s.nextID)
	s.nextID++

	stored := &domain.Cult{
		ID:          id,
		Key:         c.Key,
		Username:    c.Username,
		Name:        c.Name,
		Image:       c.Image,
		Bio:         c.Bio,
		CreatedByID: c.CreatedByID,
		MemberIDs:   []string{},
		InfernoIDs:  []string{},
	}
	s.cults[id] = stored
	s.byKey[c.Key] = id
	s.byUsername[c.Username] = id

	return cloneCult(stored), nil
}

func (s *CultMemoryStorage) GetCultByKey(key string) (*domain.Cult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byKey[key]
	if !exists {
		return nil, domain.NotFound("cult", key)
	}
	return cloneCult(s.cults[id]), nil
}

func (s *CultMemoryStorage) GetCultByID(id string) (*domain.Cult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.cults[id]
	if !exists {
		return nil, domain.NotFound("cult", id)
	}
	return cloneCult(c), nil
}

func (s *CultMemoryStorage) UpdateCultInfo(ctx context.Context, key, name, username, image string) (*domain.Cult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byKey[key]
	if !exists {
		return nil, domain.NotFound("cult", key)
	}
	c := s.cults[id]

	if ownerID, taken := s.byUsername[username]; taken && ownerID != id {
		return nil, domain.Conflict("cult username", username)
	}
	delete(s.byUsername, c.Username)
	c.Name = name
	c.Username = username
	c.Image = image
	s.byUsername[username] = id

	return cloneCult(c), nil
}

func (s *CultMemoryStorage) AddMember(ctx context.Context, cultID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.cults[cultID]
	if !exists {
		return domain.NotFound("cult", cultID)
	}
	if !contains(c.MemberIDs, userID) {
		c.MemberIDs = append(c.MemberIDs, userID)
	}
	return nil
}

func (s *CultMemoryStorage) RemoveMember(ctx context.Context, cultID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.cults[cultID]
	if !exists {
		return domain.NotFound("cult", cultID)
	}
	c.MemberIDs = remove(c.MemberIDs, userID)
	return nil
}

func (s *CultMemoryStorage) AttachInferno(ctx context.Context, cultID, infernoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.cults[cultID]
	if !exists {
		return domain.NotFound("cult", cultID)
	}
	if !contains(c.InfernoIDs, infernoID) {
		c.InfernoIDs = append(c.InfernoIDs, infernoID)
	}
	return nil
}

func (s *CultMemoryStorage) ListCults(search string, sortAsc bool, offset, limit int) ([]*domain.Cult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.match(search)
	sort.Slice(matched, func(i, j int) bool {
		if sortAsc {
			return numericID(matched[i].ID) < numericID(matched[j].ID)
		}
		return numericID(matched[i].ID) > numericID(matched[j].ID)
	})

	if offset >= len(matched) {
		return []*domain.Cult{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*domain.Cult, 0, end-offset)
	for _, c := range matched[offset:end] {
		page = append(page, cloneCult(c))
	}
	return page, nil
}

func (s *CultMemoryStorage) CountCults(search string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.match(search)), nil
}

func (s *CultMemoryStorage) DeleteCultByKey(ctx context.Context, key string) (*domain.Cult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byKey[key]
	if !exists {
		return nil, domain.NotFound("cult", key)
	}
	c := s.cults[id]
	delete(s.cults, id)
	delete(s.byKey, key)
	delete(s.byUsername, c.Username)

	return cloneCult(c), nil
}

// match filters by case-insensitive substring on name or username; an empty
// search matches everything.
func (s *CultMemoryStorage) match(search string) []*domain.Cult {
	needle := strings.ToLower(strings.TrimSpace(search))

	var matched []*domain.Cult
	for _, c := range s.cults {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Username), needle) {
			matched = append(matched, c)
		}
	}
	return matched
}

func cloneCult(c *domain.Cult) *domain.Cult {
	clone := *c
	clone.MemberIDs = append([]string(nil), c.MemberIDs...)
	clone.InfernoIDs = append([]string(nil), c.InfernoIDs...)
	return &clone
}
