package ussd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"igire/backend/internal/complaint"
	"igire/backend/internal/config"
	"igire/backend/internal/localization"
	"igire/backend/internal/models"
	"igire/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, sub complaint.Submission) (*models.Complaint, error) {
	args := m.Called(ctx, sub)
	if c := args.Get(0); c != nil {
		return c.(*models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error) {
	args := m.Called(ctx, idOrCode)
	if c := args.Get(0); c != nil {
		return c.(*models.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLookup) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRedeemer struct {
	mock.Mock
}

func (m *MockRedeemer) Redeem(ctx context.Context, userID string, option config.RewardOption) (*models.Redemption, error) {
	args := m.Called(ctx, userID, option)
	if r := args.Get(0); r != nil {
		return r.(*models.Redemption), args.Error(1)
	}
	return nil, args.Error(1)
}

const phone = "+250788000001"

type fixture struct {
	submitter *MockSubmitter
	lookup    *MockLookup
	redeemer  *MockRedeemer
	handler   *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	texts, err := localization.New()
	require.NoError(t, err)
	f := &fixture{
		submitter: new(MockSubmitter),
		lookup:    new(MockLookup),
		redeemer:  new(MockRedeemer),
	}
	f.handler = NewHandler(f.submitter, f.lookup, f.redeemer, texts, "en", zap.NewNop())
	return f
}

func (f *fixture) send(text string) string {
	return f.handler.Handle(context.Background(), Request{SessionID: "s-1", PhoneNumber: phone, Text: text}).String()
}

func TestParse(t *testing.T) {
	tests := []struct {
		text   string
		state  State
		inputs []string
		ok     bool
	}{
		{"", State{BranchRoot, 0}, nil, true},
		{"1", State{BranchSubmit, 1}, []string{"1"}, true},
		{"1*2*Gasabo", State{BranchSubmit, 3}, []string{"1", "2", "Gasabo"}, true},
		{"1*2*Gasabo*pipe burst*no water", State{BranchSubmit, 4}, []string{"1", "2", "Gasabo", "pipe burst*no water"}, true},
		{"2*IG-1234ABCD", State{BranchTrack, 2}, []string{"2", "IG-1234ABCD"}, true},
		{"4*1*1", State{BranchRedeem, 3}, []string{"4", "1", "1"}, true},
		{"3*9", State{}, []string{"3", "9"}, false},
		{"9", State{}, []string{"9"}, false},
		{"abc", State{}, []string{"abc"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			state, inputs, ok := Parse(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.state, state)
				assert.Equal(t, tt.inputs, inputs)
			}
		})
	}
}

func TestEveryReachableStateHasATransition(t *testing.T) {
	for branch, shape := range shapes {
		for depth := 1; depth <= shape.maxDepth; depth++ {
			_, ok := transitions[State{branch, depth}]
			assert.True(t, ok, "missing transition for %s at depth %d", branch, depth)
		}
	}
}

func TestMenusContinue(t *testing.T) {
	f := newFixture(t)

	assert.True(t, strings.HasPrefix(f.send(""), "CON Welcome to Igire"))
	assert.True(t, strings.HasPrefix(f.send("1"), "CON Choose category"))
	assert.Equal(t, "CON Enter your location (district or sector):", f.send("1*3"))
	assert.Equal(t, "CON Describe the problem:", f.send("1*3*Huye"))
	assert.Equal(t, "CON Enter your tracking code:", f.send("2"))
}

func TestInvalidChoicesEnd(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"7", "1*6", "1*0*Huye", "1*2* ", "4*9", "4*1*3", "3*1"} {
		assert.Equal(t, "END Invalid choice. Please try again.", f.send(text), text)
	}
}

func TestSubmit_MapsMenuCategoryAndCreditsMatchedUser(t *testing.T) {
	// Arrange
	f := newFixture(t)
	uid := "u-1"
	f.submitter.On("Submit", mock.Anything, mock.MatchedBy(func(s complaint.Submission) bool {
		return s.Category == models.CategoryRoads &&
			s.District == "Huye" &&
			s.Description == "pothole*near market" &&
			s.Channel == models.ChannelUSSD &&
			s.ReporterPhone == phone &&
			s.Meta["sessionId"] == "s-1"
	})).Return(&models.Complaint{TrackingCode: "IG-AAAA0001", UserID: &uid, PointsAwarded: 50}, nil).Once()

	// Act
	resp := f.send("1*3*Huye*pothole*near market")

	// Assert
	assert.Equal(t, "END Complaint received. Tracking code: IG-AAAA0001. You earned 50 points.", resp)
	f.submitter.AssertExpectations(t)
}

func TestSubmit_EveryMenuCategory(t *testing.T) {
	for i, want := range models.Categories {
		f := newFixture(t)
		f.submitter.On("Submit", mock.Anything, mock.MatchedBy(func(s complaint.Submission) bool {
			return s.Category == want
		})).Return(&models.Complaint{TrackingCode: "IG-X"}, nil).Once()

		resp := f.send(strings.Join([]string{"1", string(rune('1' + i)), "Musanze", "issue"}, "*"))

		assert.Equal(t, "END Complaint received. Tracking code: IG-X.", resp)
		f.submitter.AssertExpectations(t)
	}
}

func TestSubmit_ReplayResubmits(t *testing.T) {
	f := newFixture(t)
	f.submitter.On("Submit", mock.Anything, mock.Anything).Return(&models.Complaint{TrackingCode: "IG-X"}, nil)

	f.send("1*1*Gasabo*no water")
	f.send("1*1*Gasabo*no water")

	f.submitter.AssertNumberOfCalls(t, "Submit", 2)
}

func TestSubmit_FailureEndsWithServiceError(t *testing.T) {
	f := newFixture(t)
	f.submitter.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	assert.Equal(t, "END Service unavailable. Please try again later.", f.send("1*1*Gasabo*no water"))
}

func TestTrack(t *testing.T) {
	f := newFixture(t)
	f.lookup.On("GetComplaint", mock.Anything, "IG-1234ABCD").
		Return(&models.Complaint{TrackingCode: "IG-1234ABCD", Status: models.StatusInProgress}, nil)
	f.lookup.On("GetComplaint", mock.Anything, "IG-FFFFFFFF").Return(nil, storage.ErrNotFound)

	assert.Equal(t, "END Complaint IG-1234ABCD is in progress.", f.send("2*ig-1234abcd"))
	assert.Equal(t, "END No complaint found with code IG-FFFFFFFF.", f.send("2*IG-FFFFFFFF"))
}

func TestPoints(t *testing.T) {
	f := newFixture(t)
	f.lookup.On("GetUserByPhone", mock.Anything, phone).Return(&models.User{ID: "u-1", Points: 250}, nil).Once()

	assert.Equal(t, "END You have 250 points.", f.send("3"))

	f.lookup.On("GetUserByPhone", mock.Anything, phone).Return(nil, storage.ErrNotFound)
	assert.Equal(t, "END No account is registered for this phone number.", f.send("3"))
}

func TestRedeem_Flow(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.lookup.On("GetUserByPhone", mock.Anything, phone).Return(&models.User{ID: "u-1", Points: 250}, nil)
	airtime := config.RewardCatalog[0]
	f.redeemer.On("Redeem", mock.Anything, "u-1", airtime).
		Return(&models.Redemption{ID: "r-1", CoinsRequired: airtime.CoinsRequired}, nil).Once()

	// Act / Assert
	menu := f.send("4")
	assert.True(t, strings.HasPrefix(menu, "CON Choose a reward:\n1. Airtime 500 RWF (100 points)"), menu)
	assert.Equal(t, "CON Redeem Airtime 500 RWF for 100 points?\n1. Confirm\n2. Cancel", f.send("4*1"))
	assert.Equal(t, "END Request received. Airtime 500 RWF will be sent shortly. Balance: 150 points.", f.send("4*1*1"))
	assert.Equal(t, "END Cancelled.", f.send("4*1*2"))
	f.redeemer.AssertExpectations(t)
}

func TestRedeem_InsufficientPoints(t *testing.T) {
	f := newFixture(t)
	f.lookup.On("GetUserByPhone", mock.Anything, phone).Return(&models.User{ID: "u-1", Points: 50}, nil)
	f.redeemer.On("Redeem", mock.Anything, "u-1", config.RewardCatalog[2]).Return(nil, storage.ErrInsufficientPoints)

	assert.Equal(t, "END Not enough points. You need 400 points.", f.send("4*3*1"))
}

func TestKinyarwanda(t *testing.T) {
	f := newFixture(t)

	resp := f.handler.Handle(context.Background(), Request{PhoneNumber: phone, Text: "", Language: "rw"})

	assert.False(t, resp.End)
	assert.True(t, strings.HasPrefix(resp.Text, "Murakaza neza"))

	resp = f.handler.Handle(context.Background(), Request{PhoneNumber: phone, Text: "", Language: "fr"})
	assert.True(t, strings.HasPrefix(resp.Text, "Welcome"))
}
