package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/firepit/infernos/internal/domain"
	"github.com/firepit/infernos/models"
	"github.com/jinzhu/gorm"
)

type CultPostgresStorage struct{}

func NewCultPostgresStorage() *CultPostgresStorage {
	return &CultPostgresStorage{}
}

func (s *CultPostgresStorage) CreateCult(ctx context.Context, c *domain.Cult) (*domain.Cult, error) {
	var clash models.Cult
	if DB.Where("external_id = ?", c.Key).First(&clash).Error == nil {
		return nil, domain.Conflict("cult", c.Key)
	}
	if DB.Where("username = ?", c.Username).First(&clash).Error == nil {
		return nil, domain.Conflict("cult username", c.Username)
	}

	createdBy, err := parseID(c.CreatedByID)
	if err != nil {
		return nil, domain.NotFound("user", c.CreatedByID)
	}

	record := &models.Cult{
		ExternalID:  c.Key,
		Username:    c.Username,
		Name:        c.Name,
		Image:       c.Image,
		Bio:         c.Bio,
		CreatedByID: createdBy,
	}
	if err := DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("could not create cult: %w", err)
	}
	return s.toDomain(record)
}

func (s *CultPostgresStorage) GetCultByKey(key string) (*domain.Cult, error) {
	var record models.Cult
	err := DB.Where("external_id = ?", key).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, domain.NotFound("cult", key)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get cult by key: %w", err)
	}
	return s.toDomain(&record)
}

func (s *CultPostgresStorage) GetCultByID(id string) (*domain.Cult, error) {
	cid, err := parseID(id)
	if err != nil {
		return nil, domain.NotFound("cult", id)
	}
	var record models.Cult
	err = DB.First(&record, cid).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, domain.NotFound("cult", id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get cult by id: %w", err)
	}
	return s.toDomain(&record)
}

func (s *CultPostgresStorage) UpdateCultInfo(ctx context.Context, key, name, username, image string) (*domain.Cult, error) {
	var record models.Cult
	err := DB.Where("external_id = ?", key).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, domain.NotFound("cult", key)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get cult by key: %w", err)
	}

	var clash models.Cult
	if DB.Where("username = ? AND id <> ?", username, record.ID).First(&clash).Error == nil {
		return nil, domain.Conflict("cult username", username)
	}

	updates := map[string]interface{}{"name": name, "username": username, "image": image}
	if err := DB.Model(&record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("could not update cult: %w", err)
	}
	return s.toDomain(&record)
}

func (s *CultPostgresStorage) AddMember(ctx context.Context, cultID, userID string) error {
	cid, err := parseID(cultID)
	if err != nil {
		return domain.NotFound("cult", cultID)
	}
	uid, err := parseID(userID)
	if err != nil {
		return domain.NotFound("user", userID)
	}

	var record models.Cult
	if gorm.IsRecordNotFoundError(DB.First(&record, cid).Error) {
		return domain.NotFound("cult", cultID)
	}

	var member models.User
	if gorm.IsRecordNotFoundError(DB.First(&member, uid).Error) {
		return domain.NotFound("user", userID)
	}
	if err := DB.Model(&record).Association("Members").Append(&member).Error; err != nil {
		return fmt.Errorf("could not add member: %w", err)
	}
	return nil
}

func (s *CultPostgresStorage) RemoveMember(ctx context.Context, cultID, userID string) error {
	cid, err := parseID(cultID)
	if err != nil {
		return domain.NotFound("cult", cultID)
	}
	uid, err := parseID(userID)
	if err != nil {
		return domain.NotFound("user", userID)
	}

	var record models.Cult
	if gorm.IsRecordNotFoundError(DB.First(&record, cid).Error) {
		return domain.NotFound("cult", cultID)
	}

	member := models.User{Model: gorm.Model{ID: uid}}
	if err := DB.Model(&record).Association("Members").Delete(&member).Error; err != nil {
		return fmt.Errorf("could not remove member: %w", err)
	}
	return nil
}

func (s *CultPostgresStorage) AttachInferno(ctx context.Context, cultID, infernoID string) error {
	cid, err := parseID(cultID)
	if err != nil {
		return domain.NotFound("cult", cultID)
	}
	iid, err := parseID(infernoID)
	if err != nil {
		return domain.NotFound("inferno", infernoID)
	}

	var record models.Cult
	if gorm.IsRecordNotFoundError(DB.First(&record, cid).Error) {
		return domain.NotFound("cult", cultID)
	}

	err = DB.Model(&models.Inferno{}).Where("id = ?", iid).Update("cult_id", cid).Error
	if err != nil {
		return fmt.Errorf("could not attach inferno: %w", err)
	}
	return nil
}

func (s *CultPostgresStorage) ListCults(search string, sortAsc bool, offset, limit int) ([]*domain.Cult, error) {
	order := "created_at desc, id desc"
	if sortAsc {
		order = "created_at asc, id asc"
	}

	var records []models.Cult
	err := applySearch(DB, search).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("could not list cults: %w", err)
	}

	result := make([]*domain.Cult, 0, len(records))
	for i := range records {
		c, err := s.toDomain(&records[i])
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

func (s *CultPostgresStorage) CountCults(search string) (int, error) {
	var count int
	err := applySearch(DB.Model(&models.Cult{}), search).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("could not count cults: %w", err)
	}
	return count, nil
}

func (s *CultPostgresStorage) DeleteCultByKey(ctx context.Context, key string) (*domain.Cult, error) {
	var record models.Cult
	err := DB.Where("external_id = ?", key).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, domain.NotFound("cult", key)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get cult by key: %w", err)
	}

	deleted, err := s.toDomain(&record)
	if err != nil {
		return nil, err
	}

	if err := DB.Delete(&record).Error; err != nil {
		return nil, fmt.Errorf("could not delete cult: %w", err)
	}
	if err := DB.Exec("DELETE FROM cult_members WHERE cult_id = ?", record.ID).Error; err != nil {
		return nil, fmt.Errorf("could not clear cult members: %w", err)
	}
	return deleted, nil
}

func applySearch(db *gorm.DB, search string) *gorm.DB {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return db
	}
	pattern := "%" + needle + "%"
	return db.Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ?", pattern, pattern)
}

func (s *CultPostgresStorage) toDomain(m *models.Cult) (*domain.Cult, error) {
	memberIDs, err := selectIDs(
		"SELECT user_id FROM cult_members WHERE cult_id = ? ORDER BY user_id ASC", m.ID)
	if err != nil {
		return nil, fmt.Errorf("could not load members: %w", err)
	}
	infernoIDs, err := selectIDs(
		"SELECT id FROM infernos WHERE cult_id = ? AND deleted_at IS NULL ORDER BY id ASC", m.ID)
	if err != nil {
		return nil, fmt.Errorf("could not load cult infernos: %w", err)
	}

	return &domain.Cult{
		ID:          fmt.Sprint(m.ID),
		Key:         m.ExternalID,
		Username:    m.Username,
		Name:        m.Name,
		Image:       m.Image,
		Bio:         m.Bio,
		CreatedByID: fmt.Sprint(m.CreatedByID),
		MemberIDs:   memberIDs,
		InfernoIDs:  infernoIDs,
	}, nil
}
