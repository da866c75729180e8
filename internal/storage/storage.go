// Package storage persists hub documents in PostgreSQL through gorm and fans
// dashboard events out through redis pub/sub.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"igire/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrDuplicate          = errors.New("already exists")
)

// DashboardChannel is the redis channel carrying DashboardEvent payloads.
const DashboardChannel = "igire:dashboard"

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByIdentifier looks a user up by email or phone.
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	AddUserPoints(ctx context.Context, userID string, delta int) error
	RedeemPoints(ctx context.Context, redemption *models.Redemption) error
	ListRedemptions(ctx context.Context, userID string) ([]models.Redemption, error)
	CompleteRedemption(ctx context.Context, id string) (*models.Redemption, error)
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	// GetComplaint accepts either the uuid or the tracking code.
	GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	UpdateComplaintFields(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteComplaint(ctx context.Context, id string) error
	ComplaintStats(ctx context.Context) (*models.ComplaintStats, error)
}

type InstitutionStore interface {
	CreateInstitution(ctx context.Context, inst *models.Institution) error
	GetInstitution(ctx context.Context, id string) (*models.Institution, error)
	ListInstitutions(ctx context.Context) ([]models.Institution, error)
	UpdateInstitution(ctx context.Context, inst *models.Institution) error
	DeleteInstitution(ctx context.Context, id string) error
}

type PredictionStore interface {
	CreatePrediction(ctx context.Context, p *models.Prediction) error
	ListPredictions(ctx context.Context) ([]models.Prediction, error)
	DeletePrediction(ctx context.Context, id string) error
}

type EventBus interface {
	PublishEvent(ctx context.Context, event models.DashboardEvent) error
}

type Storage interface {
	UserStore
	ComplaintStore
	InstitutionStore
	PredictionStore
	EventBus
	Ping(ctx context.Context) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// AutoMigrate creates or updates every table the hub uses.
func (s *Service) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Redemption{},
		&models.Institution{},
		&models.Complaint{},
		&models.Prediction{},
	)
}

// Ping checks both backing stores.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// PublishEvent fans the event out to every server instance through redis pub/sub.
// Without redis the event only reaches dashboards through polling.
func (s *Service) PublishEvent(ctx context.Context, event models.DashboardEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, DashboardChannel, payload).Err()
}

// SubscribeEvents returns a subscription on the dashboard channel.
func (s *Service) SubscribeEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, DashboardChannel)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
