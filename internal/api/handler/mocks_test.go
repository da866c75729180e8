package handler

import (
	"context"
	"io"

	"igire/backend/internal/categorize"
	"igire/backend/internal/complaint"
	"igire/backend/internal/config"
	"igire/backend/internal/models"
	"igire/backend/internal/ussd"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) user(args mock.Arguments) (*models.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "u-new"
	}
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockStorage) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return m.user(m.Called(ctx, identifier))
}

func (m *MockStorage) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return m.user(m.Called(ctx, phone))
}

func (m *MockStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) UpdateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockStorage) AddUserPoints(ctx context.Context, userID string, delta int) error {
	return m.Called(ctx, userID, delta).Error(0)
}

func (m *MockStorage) RedeemPoints(ctx context.Context, redemption *models.Redemption) error {
	return m.Called(ctx, redemption).Error(0)
}

func (m *MockStorage) ListRedemptions(ctx context.Context, userID string) ([]models.Redemption, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Redemption), args.Error(1)
}

func (m *MockStorage) CompleteRedemption(ctx context.Context, id string) (*models.Redemption, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Redemption), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStorage) GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error) {
	args := m.Called(ctx, idOrCode)
	if c := args.Get(0); c != nil {
		return c.(*models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) UpdateComplaintFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockStorage) DeleteComplaint(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) ComplaintStats(ctx context.Context) (*models.ComplaintStats, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*models.ComplaintStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	return m.Called(ctx, inst).Error(0)
}

func (m *MockStorage) GetInstitution(ctx context.Context, id string) (*models.Institution, error) {
	args := m.Called(ctx, id)
	if i := args.Get(0); i != nil {
		return i.(*models.Institution), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) ListInstitutions(ctx context.Context) ([]models.Institution, error) {
	args := m.Called(ctx)
	if l := args.Get(0); l != nil {
		return l.([]models.Institution), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) UpdateInstitution(ctx context.Context, inst *models.Institution) error {
	return m.Called(ctx, inst).Error(0)
}

func (m *MockStorage) DeleteInstitution(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) CreatePrediction(ctx context.Context, p *models.Prediction) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockStorage) ListPredictions(ctx context.Context) ([]models.Prediction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Prediction), args.Error(1)
}

func (m *MockStorage) DeletePrediction(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) PublishEvent(ctx context.Context, event models.DashboardEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockComplaints struct {
	mock.Mock
}

func (m *MockComplaints) result(args mock.Arguments) (*models.Complaint, error) {
	if c := args.Get(0); c != nil {
		return c.(*models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaints) Submit(ctx context.Context, sub complaint.Submission) (*models.Complaint, error) {
	return m.result(m.Called(ctx, sub))
}

func (m *MockComplaints) SubmitMedia(ctx context.Context, sub complaint.Submission, filename string, file io.Reader) (*models.Complaint, error) {
	return m.result(m.Called(ctx, sub, filename, file))
}

func (m *MockComplaints) SubmitRecording(ctx context.Context, sub complaint.Submission, mediaURL string) (*models.Complaint, error) {
	return m.result(m.Called(ctx, sub, mediaURL))
}

func (m *MockComplaints) Update(ctx context.Context, id string, upd complaint.Update) (*models.Complaint, error) {
	return m.result(m.Called(ctx, id, upd))
}

type MockRewards struct {
	mock.Mock
}

func (m *MockRewards) Catalog() []config.RewardOption {
	return config.RewardCatalog
}

func (m *MockRewards) RedeemCode(ctx context.Context, userID, code string) (*models.Redemption, error) {
	args := m.Called(ctx, userID, code)
	if r := args.Get(0); r != nil {
		return r.(*models.Redemption), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRewards) Complete(ctx context.Context, redemptionID string) (*models.Redemption, error) {
	args := m.Called(ctx, redemptionID)
	if r := args.Get(0); r != nil {
		return r.(*models.Redemption), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUSSD struct {
	mock.Mock
}

func (m *MockUSSD) Handle(ctx context.Context, req ussd.Request) ussd.Response {
	return m.Called(ctx, req).Get(0).(ussd.Response)
}

type MockSMS struct {
	mock.Mock
}

func (m *MockSMS) Send(ctx context.Context, to, text string) error {
	return m.Called(ctx, to, text).Error(0)
}

type MockInsights struct {
	mock.Mock
}

func (m *MockInsights) Generate(ctx context.Context) ([]models.Prediction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Prediction), args.Error(1)
}

type stubCategorizer struct {
	result categorize.Result
}

func (s stubCategorizer) Categorize(context.Context, string) categorize.Result {
	return s.result
}

type countingCache struct {
	invalidations int
}

func (c *countingCache) Invalidate() { c.invalidations++ }
