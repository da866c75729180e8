package storage

import (
	"context"
	"errors"

	"igire/backend/internal/models"

	"gorm.io/gorm"
)

// createAttempts bounds retries when a generated tracking code collides.
const createAttempts = 3

// CreateComplaint inserts the complaint. When the id was generated here and the
// short tracking code collides with an existing one, a fresh id is drawn.
func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	generated := complaint.ID == ""

	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = s.DB.WithContext(ctx).Create(complaint).Error
		if !generated || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		complaint.ID, complaint.TrackingCode = "", ""
	}
	return duplicate(err)
}

func (s *Service) GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.WithContext(ctx).
		Where("id = ? OR tracking_code = ?", idOrCode, idOrCode).
		First(&complaint).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &complaint, nil
}

func (s *Service) ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	var complaints []models.Complaint
	if err := applyComplaintFilter(s.DB.WithContext(ctx), filter).
		Order("created_at desc").
		Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

func applyComplaintFilter(q *gorm.DB, f models.ComplaintFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.District != "" {
		q = q.Where("district = ?", f.District)
	}
	if f.Channel != "" {
		q = q.Where("channel = ?", f.Channel)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.AssignedAgencyID != "" {
		q = q.Where("assigned_agency_id = ?", f.AssignedAgencyID)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

// UpdateComplaintFields applies a partial update. Concurrent writers race; the last one wins.
func (s *Service) UpdateComplaintFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteComplaint(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Complaint{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ComplaintStats(ctx context.Context) (*models.ComplaintStats, error) {
	stats := &models.ComplaintStats{}
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.Complaint{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	groups := []struct {
		column string
		into   *[]models.CountByKey
	}{
		{"status", &stats.ByStatus},
		{"category", &stats.ByCategory},
		{"channel", &stats.ByChannel},
		{"district", &stats.ByDistrict},
	}
	for _, g := range groups {
		if err := db.Model(&models.Complaint{}).
			Select(g.column + " AS key, COUNT(*) AS count").
			Group(g.column).
			Order("count desc").
			Scan(g.into).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
