package postgres

import (
	"context"
	"fmt"

	"github.com/firepit/infernos/internal/domain"
	"github.com/firepit/infernos/models"
	"github.com/jinzhu/gorm"
)

type InfernoPostgresStorage struct{}

func NewInfernoPostgresStorage() *InfernoPostgresStorage {
	return &InfernoPostgresStorage{}
}

func (s *InfernoPostgresStorage) CreateInferno(ctx context.Context, in *domain.Inferno) (*domain.Inferno, error) {
	authorID, err := parseID(in.AuthorID)
	if err != nil {
		return nil, domain.NotFound("user", in.AuthorID)
	}

	record := &models.Inferno{
		Text:     in.Text,
		AuthorID: authorID,
	}
	if in.CultID != "" {
		cid, err := parseID(in.CultID)
		if err != nil {
			return nil, domain.NotFound("cult", in.CultID)
		}
		record.CultID = &cid
	}
	if in.ParentID != "" {
		pid, err := parseID(in.ParentID)
		if err != nil {
			return nil, domain.NotFound("inferno", in.ParentID)
		}
		record.ParentID = &pid
	}

	if err := DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("could not create inferno: %w", err)
	}
	return s.toDomain(record)
}

func (s *InfernoPostgresStorage) GetInfernoByID(id string) (*domain.Inferno, error) {
	iid, err := parseID(id)
	if err != nil {
		return nil, domain.NotFound("inferno", id)
	}

	var record models.Inferno
	err = DB.First(&record, iid).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, domain.NotFound("inferno", id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get inferno by id: %w", err)
	}
	return s.toDomain(&record)
}

// AppendChild pins the child's parent reference; re-running it after a
// partial failure leaves the same row.
func (s *InfernoPostgresStorage) AppendChild(ctx context.Context, parentID, childID string) error {
	pid, err := parseID(parentID)
	if err != nil {
		return domain.NotFound("inferno", parentID)
	}
	cid, err := parseID(childID)
	if err != nil {
		return domain.NotFound("inferno", childID)
	}

	var parent models.Inferno
	if gorm.IsRecordNotFoundError(DB.First(&parent, pid).Error) {
		return domain.NotFound("inferno", parentID)
	}

	err = DB.Model(&models.Inferno{}).Where("id = ?", cid).Update("parent_id", pid).Error
	if err != nil {
		return fmt.Errorf("could not append child: %w", err)
	}
	return nil
}

func (s *InfernoPostgresStorage) ListTopLevel(offset, limit int) ([]*domain.Inferno, error) {
	var records []models.Inferno
	err := DB.Where("parent_id IS NULL").
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("could not list top-level infernos: %w", err)
	}
	return s.toDomainSlice(records)
}

func (s *InfernoPostgresStorage) CountTopLevel() (int, error) {
	var count int
	err := DB.Model(&models.Inferno{}).Where("parent_id IS NULL").Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("could not count top-level infernos: %w", err)
	}
	return count, nil
}

func (s *InfernoPostgresStorage) ListByAuthor(authorID string) ([]*domain.Inferno, error) {
	aid, err := parseID(authorID)
	if err != nil {
		return nil, domain.NotFound("user", authorID)
	}

	var records []models.Inferno
	err = DB.Where("author_id = ?", aid).
		Order("created_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("could not list infernos by author: %w", err)
	}
	return s.toDomainSlice(records)
}

func (s *InfernoPostgresStorage) ListByCult(cultID string) ([]*domain.Inferno, error) {
	cid, err := parseID(cultID)
	if err != nil {
		return nil, domain.NotFound("cult", cultID)
	}

	var records []models.Inferno
	err = DB.Where("cult_id = ?", cid).
		Order("created_at asc, id asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("could not list infernos by cult: %w", err)
	}
	return s.toDomainSlice(records)
}

func (s *InfernoPostgresStorage) DeleteByCult(ctx context.Context, cultID string) error {
	cid, err := parseID(cultID)
	if err != nil {
		return domain.NotFound("cult", cultID)
	}
	err = DB.Where("cult_id = ?", cid).Delete(&models.Inferno{}).Error
	if err != nil {
		return fmt.Errorf("could not delete infernos by cult: %w", err)
	}
	return nil
}

func (s *InfernoPostgresStorage) toDomain(m *models.Inferno) (*domain.Inferno, error) {
	childIDs, err := selectIDs(
		"SELECT id FROM infernos WHERE parent_id = ? AND deleted_at IS NULL ORDER BY id ASC", m.ID)
	if err != nil {
		return nil, fmt.Errorf("could not load children: %w", err)
	}

	in := &domain.Inferno{
		ID:        fmt.Sprint(m.ID),
		Text:      m.Text,
		AuthorID:  fmt.Sprint(m.AuthorID),
		CreatedAt: m.CreatedAt,
		ChildIDs:  childIDs,
	}
	if m.CultID != nil {
		in.CultID = fmt.Sprint(*m.CultID)
	}
	if m.ParentID != nil {
		in.ParentID = fmt.Sprint(*m.ParentID)
	}
	return in, nil
}

func (s *InfernoPostgresStorage) toDomainSlice(records []models.Inferno) ([]*domain.Inferno, error) {
	result := make([]*domain.Inferno, 0, len(records))
	for i := range records {
		in, err := s.toDomain(&records[i])
		if err != nil {
			return nil, err
		}
		result = append(result, in)
	}
	return result, nil
}
