package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"igire/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    *Message
		wantErr error
	}{
		{
			name: "english category",
			text: "IGIRE water Kicukiro no water for three days",
			want: &Message{Category: models.CategoryWater, Location: "Kicukiro", Description: "no water for three days"},
		},
		{
			name: "kinyarwanda category and lowercase keyword",
			text: "igire  umuriro   Gasabo  umuriro wabuze",
			want: &Message{Category: models.CategoryElectricity, Location: "Gasabo", Description: "umuriro wabuze"},
		},
		{name: "not a complaint", text: "hello there", wantErr: ErrNotComplaint},
		{name: "empty", text: "   ", wantErr: ErrNotComplaint},
		{name: "missing description", text: "IGIRE roads Nyarugenge", wantErr: ErrBadFormat},
		{name: "unknown category", text: "IGIRE health Huye clinic closed", wantErr: ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGatewaySend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "key-1", r.Header.Get("apiKey"))
		assert.Equal(t, "sandbox", r.PostForm.Get("username"))
		assert.Equal(t, "+250788000001", r.PostForm.Get("to"))
		assert.Equal(t, "hello", r.PostForm.Get("message"))
		assert.Equal(t, "IGIRE", r.PostForm.Get("from"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1","Recipients":[{"number":"+250788000001","status":"Success","messageId":"m1"}]}}`))
	}))
	defer srv.Close()

	g := NewGateway("sandbox", "key-1", "IGIRE").WithEndpoint(srv.URL)

	assert.NoError(t, g.Send(context.Background(), "+250788000001", "hello"))
}

func TestGatewaySend_RecipientRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"SMSMessageData":{"Recipients":[{"number":"+250788000001","status":"InvalidPhoneNumber"}]}}`))
	}))
	defer srv.Close()

	err := NewGateway("sandbox", "key-1", "").WithEndpoint(srv.URL).Send(context.Background(), "+250788000001", "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidPhoneNumber")
}

func TestGatewaySend_NotConfigured(t *testing.T) {
	err := NewGateway("sandbox", "", "").Send(context.Background(), "+250788000001", "hi")

	assert.ErrorIs(t, err, ErrNotConfigured)
}
