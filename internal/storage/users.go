package storage

import (
	"context"
	"time"

	"igire/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return duplicate(s.DB.WithContext(ctx).Create(user).Error)
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Preload("Redemptions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ? OR phone = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser saves profile fields. Points are only changed through AddUserPoints and RedeemPoints.
func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	return duplicate(s.DB.WithContext(ctx).Model(user).
		Select("name", "email", "phone", "password_hash", "role", "institution_id").
		Updates(user).Error)
}

// AddUserPoints changes the balance in a single UPDATE without reading it first.
func (s *Service) AddUserPoints(ctx context.Context, userID string, delta int) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RedeemPoints debits the coins and appends the redemption record in one transaction.
func (s *Service) RedeemPoints(ctx context.Context, redemption *models.Redemption) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND points >= ?", redemption.UserID, redemption.CoinsRequired).
			Update("points", gorm.Expr("points - ?", redemption.CoinsRequired))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", redemption.UserID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrInsufficientPoints
		}
		return tx.Create(redemption).Error
	})
}

func (s *Service) ListRedemptions(ctx context.Context, userID string) ([]models.Redemption, error) {
	var out []models.Redemption
	q := s.DB.WithContext(ctx).Order("created_at desc")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CompleteRedemption(ctx context.Context, id string) (*models.Redemption, error) {
	var r models.Redemption
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	if r.Status == models.RedemptionCompleted {
		return &r, nil
	}
	now := time.Now()
	r.Status = models.RedemptionCompleted
	r.CompletedAt = &now
	if err := s.DB.WithContext(ctx).Model(&r).
		Updates(map[string]interface{}{"status": r.Status, "completed_at": now}).Error; err != nil {
		return nil, err
	}
	return &r, nil
}
