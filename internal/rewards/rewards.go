// Package rewards exchanges Igire points for airtime, data and electricity credit.
package rewards

import (
	"context"
	"errors"
	"fmt"

	"igire/backend/internal/config"
	"igire/backend/internal/models"
	"igire/backend/internal/storage"

	"go.uber.org/zap"
)

var ErrUnknownOption = errors.New("unknown reward option")

// Store is the slice of storage the reward flow needs.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	RedeemPoints(ctx context.Context, redemption *models.Redemption) error
	CompleteRedemption(ctx context.Context, id string) (*models.Redemption, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Catalog returns the redeemable options in menu order.
func (s *Service) Catalog() []config.RewardOption {
	return config.RewardCatalog
}

// Option finds a catalog entry by code, or by type when the code is a bare type name.
func Option(code string) (config.RewardOption, bool) {
	for _, o := range config.RewardCatalog {
		if o.Code == code {
			return o, true
		}
	}
	for _, o := range config.RewardCatalog {
		if o.Type == code {
			return o, true
		}
	}
	return config.RewardOption{}, false
}

// OptionAt returns the 1-based menu entry used by the USSD flow.
func OptionAt(index int) (config.RewardOption, bool) {
	if index < 1 || index > len(config.RewardCatalog) {
		return config.RewardOption{}, false
	}
	return config.RewardCatalog[index-1], true
}

// Redeem debits exactly the option's coin cost and records a pending redemption.
// It returns storage.ErrInsufficientPoints when the balance does not cover the cost.
func (s *Service) Redeem(ctx context.Context, userID string, option config.RewardOption) (*models.Redemption, error) {
	r := &models.Redemption{
		UserID:        userID,
		Type:          option.Type,
		AmountRWF:     option.AmountRWF,
		CoinsRequired: option.CoinsRequired,
	}
	if err := s.store.RedeemPoints(ctx, r); err != nil {
		if errors.Is(err, storage.ErrInsufficientPoints) || errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to redeem %s: %w", option.Code, err)
	}

	s.logger.Info("points redeemed",
		zap.String("user_id", userID),
		zap.String("reward", option.Code),
		zap.Int("coins", option.CoinsRequired))
	return r, nil
}

// RedeemCode is Redeem keyed by catalog code.
func (s *Service) RedeemCode(ctx context.Context, userID, code string) (*models.Redemption, error) {
	option, ok := Option(code)
	if !ok {
		return nil, ErrUnknownOption
	}
	return s.Redeem(ctx, userID, option)
}

// Complete marks a redemption fulfilled.
func (s *Service) Complete(ctx context.Context, redemptionID string) (*models.Redemption, error) {
	r, err := s.store.CompleteRedemption(ctx, redemptionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("redemption completed", zap.String("redemption_id", r.ID), zap.String("user_id", r.UserID))
	return r, nil
}

// Balance returns the user's current points.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Points, nil
}
