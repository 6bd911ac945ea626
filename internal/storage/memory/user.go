package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/firepit/infernos/internal/domain"
)

type UserMemoryStorage struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	byKey      map[string]string // external identity key -> ID
	byUsername map[string]string // username -> ID
	nextID     int
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		users:      make(map[string]*domain.User),
		byKey:      make(map[string]string),
		byUsername: make(map[string]string),
		nextID:     1,
	}
}

func (s *UserMemoryStorage) UpsertUser(ctx context.Context, key, username, name, image, bio string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ownerID, taken := s.byUsername[username]; taken && s.byKey[key] != ownerID {
		return nil, domain.Conflict("username", username)
	}

	if id, exists := s.byKey[key]; exists {
		u := s.users[id]
		delete(s.byUsername, u.Username)
		u.Username = username
		u.Name = name
		u.Image = image
		u.Bio = bio
		u.Onboarded = true
		s.byUsername[username] = id
		return cloneUser(u), nil
	}

	id := strconv.Itoa(s.nextID)
	s.nextID++

	u := &domain.User{
		ID:        id,
		Key:       key,
		Username:  username,
		Name:      name,
		Image:     image,
		Bio:       bio,
		Onboarded: true,
	}
	s.users[id] = u
	s.byKey[key] = id
	s.byUsername[username] = id

	return cloneUser(u), nil
}

func (s *UserMemoryStorage) GetUserByKey(key string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byKey[key]
	if !exists {
		return nil, domain.NotFound("user", key)
	}
	return cloneUser(s.users[id]), nil
}

func (s *UserMemoryStorage) GetUserByID(id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, domain.NotFound("user", id)
	}
	return cloneUser(u), nil
}

func (s *UserMemoryStorage) AttachInferno(ctx context.Context, userID, infernoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[userID]
	if !exists {
		return domain.NotFound("user", userID)
	}
	if !contains(u.InfernoIDs, infernoID) {
		u.InfernoIDs = append(u.InfernoIDs, infernoID)
	}
	return nil
}

func (s *UserMemoryStorage) AttachCult(ctx context.Context, userID, cultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[userID]
	if !exists {
		return domain.NotFound("user", userID)
	}
	if !contains(u.CultIDs, cultID) {
		u.CultIDs = append(u.CultIDs, cultID)
	}
	return nil
}

func (s *UserMemoryStorage) DetachCult(ctx context.Context, userID, cultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[userID]
	if !exists {
		return domain.NotFound("user", userID)
	}
	u.CultIDs = remove(u.CultIDs, cultID)
	return nil
}

func (s *UserMemoryStorage) ListByCult(cultID string) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.User
	for _, u := range s.users {
		if contains(u.CultIDs, cultID) {
			result = append(result, cloneUser(u))
		}
	}
	return result, nil
}

// Reads hand out copies so concurrent callers never share mutable records.
func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.InfernoIDs = append([]string(nil), u.InfernoIDs...)
	c.CultIDs = append([]string(nil), u.CultIDs...)
	return &c
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
