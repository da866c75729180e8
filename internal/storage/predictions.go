package storage

import (
	"context"

	"igire/backend/internal/models"
)

func (s *Service) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *Service) ListPredictions(ctx context.Context) ([]models.Prediction, error) {
	var out []models.Prediction
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeletePrediction(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Prediction{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
