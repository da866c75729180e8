package complaint

import (
	"context"
	"io"

	"igire/backend/internal/categorize"
	"igire/backend/internal/models"
	"igire/backend/internal/transcribe"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil && c.ID == "" {
		c.ID = "c-1"
		c.TrackingCode = models.TrackingCodeFor(c.ID)
	}
	return args.Error(0)
}

func (m *MockStore) GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error) {
	args := m.Called(ctx, idOrCode)
	if c := args.Get(0); c != nil {
		return c.(*models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdateComplaintFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockStore) GetInstitution(ctx context.Context, id string) (*models.Institution, error) {
	args := m.Called(ctx, id)
	if i := args.Get(0); i != nil {
		return i.(*models.Institution), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) AddUserPoints(ctx context.Context, userID string, delta int) error {
	return m.Called(ctx, userID, delta).Error(0)
}

func (m *MockStore) PublishEvent(ctx context.Context, event models.DashboardEvent) error {
	return m.Called(ctx, event).Error(0)
}

type stubCategorizer struct {
	result categorize.Result
	seen   []string
	routed []models.Category
}

func (s *stubCategorizer) Categorize(_ context.Context, description string) categorize.Result {
	s.seen = append(s.seen, description)
	return s.result
}

func (s *stubCategorizer) Route(_ context.Context, category models.Category) string {
	s.routed = append(s.routed, category)
	if category == models.CategoryWater {
		return "WASAC"
	}
	return "Not Found"
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, url string) (*transcribe.Transcript, error) {
	args := m.Called(ctx, url)
	if t := args.Get(0); t != nil {
		return t.(*transcribe.Transcript), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAssignment(ctx context.Context, inst *models.Institution, c *models.Complaint) error {
	return m.Called(ctx, inst, c).Error(0)
}

type MockSMS struct {
	mock.Mock
}

func (m *MockSMS) Send(ctx context.Context, to, text string) error {
	return m.Called(ctx, to, text).Error(0)
}
