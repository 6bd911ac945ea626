package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/firepit/infernos/internal/domain"
	"github.com/firepit/infernos/models"
	"github.com/jinzhu/gorm"
)

type UserPostgresStorage struct{}

func NewUserPostgresStorage() *UserPostgresStorage {
	return &UserPostgresStorage{}
}

func (s *UserPostgresStorage) UpsertUser(ctx context.Context, key, username, name, image, bio string) (*domain.User, error) {
	var existing models.User
	err := DB.Where("external_id = ?", key).First(&existing).Error

	switch {
	case err == nil:
		var clash models.User
		if DB.Where("username = ? AND id <> ?", username, existing.ID).First(&clash).Error == nil {
			return nil, domain.Conflict("username", username)
		}
		updates := map[string]interface{}{
			"username": username, "name": name, "image": image, "bio": bio, "onboarded": true,
		}
		if err := DB.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("could not update user: %w", err)
		}
		return s.toDomain(&existing)

	case gorm.IsRecordNotFoundError(err):
		var clash models.User
		if DB.Where("username = ?", username).First(&clash).Error == nil {
			return nil, domain.Conflict("username", username)
		}
		user := &models.User{
			ExternalID: key,
			Username:   username,
			Name:       name,
			Image:      image,
			Bio:        bio,
			Onboarded:  true,
		}
		if err := DB.Create(user).Error; err != nil {
			return nil, fmt.Errorf("could not create user: %w", err)
		}
		return s.toDomain(user)

	default:
		return nil, fmt.Errorf("could not look up user: %w", err)
	}
}

func (s *UserPostgresStorage) GetUserByKey(key string) (*domain.User, error) {
	var user models.User
	err := DB.Where("external_id = ?", key).First(&user).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, domain.NotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get user by key: %w", err)
	}
	return s.toDomain(&user)
}

func (s *UserPostgresStorage) GetUserByID(id string) (*domain.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, domain.NotFound("user", id)
	}
	var user models.User
	err = DB.First(&user, uid).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, domain.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return s.toDomain(&user)
}

// AttachInferno is satisfied by the author foreign key written at create time;
// here it only verifies both sides exist so a re-run after partial failure
// still reports a missing record.
func (s *UserPostgresStorage) AttachInferno(ctx context.Context, userID, infernoID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return domain.NotFound("user", userID)
	}
	var user models.User
	if gorm.IsRecordNotFoundError(DB.First(&user, uid).Error) {
		return domain.NotFound("user", userID)
	}
	iid, err := parseID(infernoID)
	if err != nil {
		return domain.NotFound("inferno", infernoID)
	}
	var in models.Inferno
	if gorm.IsRecordNotFoundError(DB.First(&in, iid).Error) {
		return domain.NotFound("inferno", infernoID)
	}
	return nil
}

func (s *UserPostgresStorage) AttachCult(ctx context.Context, userID, cultID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return domain.NotFound("user", userID)
	}
	cid, err := parseID(cultID)
	if err != nil {
		return domain.NotFound("cult", cultID)
	}

	var user models.User
	if gorm.IsRecordNotFoundError(DB.First(&user, uid).Error) {
		return domain.NotFound("user", userID)
	}
	var cult models.Cult
	if gorm.IsRecordNotFoundError(DB.First(&cult, cid).Error) {
		return domain.NotFound("cult", cultID)
	}

	// The join-table append is a no-op for an existing row.
	if err := DB.Model(&user).Association("Cults").Append(&cult).Error; err != nil {
		return fmt.Errorf("could not attach cult: %w", err)
	}
	return nil
}

func (s *UserPostgresStorage) DetachCult(ctx context.Context, userID, cultID string) error {
	uid, err := parseID(userID)
	if err != nil {
		return domain.NotFound("user", userID)
	}
	cid, err := parseID(cultID)
	if err != nil {
		return domain.NotFound("cult", cultID)
	}

	var user models.User
	if gorm.IsRecordNotFoundError(DB.First(&user, uid).Error) {
		return domain.NotFound("user", userID)
	}

	cult := models.Cult{Model: gorm.Model{ID: cid}}
	if err := DB.Model(&user).Association("Cults").Delete(&cult).Error; err != nil {
		return fmt.Errorf("could not detach cult: %w", err)
	}
	return nil
}

func (s *UserPostgresStorage) ListByCult(cultID string) ([]*domain.User, error) {
	cid, err := parseID(cultID)
	if err != nil {
		return nil, domain.NotFound("cult", cultID)
	}

	var users []models.User
	err = DB.Joins("JOIN user_cults ON user_cults.user_id = users.id").
		Where("user_cults.cult_id = ?", cid).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("could not list users by cult: %w", err)
	}

	result := make([]*domain.User, 0, len(users))
	for i := range users {
		u, err := s.toDomain(&users[i])
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, nil
}

func (s *UserPostgresStorage) toDomain(m *models.User) (*domain.User, error) {
	infernoIDs, err := selectIDs(
		"SELECT id FROM infernos WHERE author_id = ? AND parent_id IS NULL AND deleted_at IS NULL ORDER BY id ASC", m.ID)
	if err != nil {
		return nil, fmt.Errorf("could not load authored infernos: %w", err)
	}
	cultIDs, err := selectIDs(
		"SELECT cult_id FROM user_cults WHERE user_id = ? ORDER BY cult_id ASC", m.ID)
	if err != nil {
		return nil, fmt.Errorf("could not load user cults: %w", err)
	}

	return &domain.User{
		ID:         fmt.Sprint(m.ID),
		Key:        m.ExternalID,
		Username:   m.Username,
		Name:       m.Name,
		Image:      m.Image,
		Bio:        m.Bio,
		Onboarded:  m.Onboarded,
		InfernoIDs: infernoIDs,
		CultIDs:    cultIDs,
	}, nil
}

func parseID(id string) (uint, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", id)
	}
	return uint(n), nil
}

func selectIDs(query string, arg interface{}) ([]string, error) {
	rows, err := DB.Raw(query, arg).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, fmt.Sprint(id))
	}
	return ids, rows.Err()
}
