package storage

import (
	"context"

	"igire/backend/internal/models"
)

func (s *Service) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	return duplicate(s.DB.WithContext(ctx).Create(inst).Error)
}

func (s *Service) GetInstitution(ctx context.Context, id string) (*models.Institution, error) {
	var inst models.Institution
	if err := s.DB.WithContext(ctx).First(&inst, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inst, nil
}

func (s *Service) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	var out []models.Institution
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) UpdateInstitution(ctx context.Context, inst *models.Institution) error {
	res := s.DB.WithContext(ctx).Model(inst).
		Select("name", "email", "phone", "department", "role", "telegram_chat_id").
		Updates(inst)
	if res.Error != nil {
		return duplicate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteInstitution(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Institution{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
