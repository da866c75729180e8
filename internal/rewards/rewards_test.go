package rewards

import (
	"context"
	"errors"
	"testing"
	"time"

	"igire/backend/internal/models"
	"igire/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) RedeemPoints(ctx context.Context, r *models.Redemption) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockStore) CompleteRedemption(ctx context.Context, id string) (*models.Redemption, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Redemption), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestOptionLookup(t *testing.T) {
	o, ok := Option("data-1000")
	require.True(t, ok)
	assert.Equal(t, 200, o.CoinsRequired)

	o, ok = Option("electricity")
	require.True(t, ok)
	assert.Equal(t, "electricity-2000", o.Code)

	_, ok = Option("cash")
	assert.False(t, ok)

	o, ok = OptionAt(1)
	require.True(t, ok)
	assert.Equal(t, "airtime", o.Type)
	_, ok = OptionAt(0)
	assert.False(t, ok)
	_, ok = OptionAt(4)
	assert.False(t, ok)
}

func TestRedeem_DebitsExactCost(t *testing.T) {
	// Arrange
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())
	store.On("RedeemPoints", mock.Anything, mock.MatchedBy(func(r *models.Redemption) bool {
		return r.UserID == "u1" && r.Type == "airtime" && r.AmountRWF == 500 && r.CoinsRequired == 100
	})).Return(nil).Once()

	// Act
	r, err := svc.RedeemCode(context.Background(), "u1", "airtime-500")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 100, r.CoinsRequired)
	store.AssertExpectations(t)
}

func TestRedeem_InsufficientPoints(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())
	store.On("RedeemPoints", mock.Anything, mock.Anything).Return(storage.ErrInsufficientPoints)

	_, err := svc.RedeemCode(context.Background(), "u1", "electricity-2000")

	assert.ErrorIs(t, err, storage.ErrInsufficientPoints)
}

func TestRedeem_UnknownOptionTouchesNothing(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())

	_, err := svc.RedeemCode(context.Background(), "u1", "cash-100")

	assert.ErrorIs(t, err, ErrUnknownOption)
	store.AssertNotCalled(t, "RedeemPoints", mock.Anything, mock.Anything)
}

func TestRedeem_StoreFailureIsWrapped(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())
	boom := errors.New("connection reset")
	store.On("RedeemPoints", mock.Anything, mock.Anything).Return(boom)

	_, err := svc.RedeemCode(context.Background(), "u1", "data-1000")

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "data-1000")
}

func TestComplete(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())
	now := time.Now()
	store.On("CompleteRedemption", mock.Anything, "r1").
		Return(&models.Redemption{ID: "r1", UserID: "u1", Status: models.RedemptionCompleted, CompletedAt: &now}, nil)

	r, err := svc.Complete(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, models.RedemptionCompleted, r.Status)
}

func TestBalance(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())
	store.On("GetUserByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Points: 150}, nil)
	store.On("GetUserByID", mock.Anything, "ghost").Return(nil, storage.ErrNotFound)

	points, err := svc.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 150, points)

	_, err = svc.Balance(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
