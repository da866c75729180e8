package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"igire/backend/internal/auth"
	"igire/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubVerifier map[string]*auth.Identity

func (s stubVerifier) Verify(token string) (*auth.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	tokens := stubVerifier{
		"admin-token": {UserID: "a-1", Role: models.RoleAdmin},
		"user-token":  {UserID: "u-1", Role: models.RoleUser},
	}
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), SecurityHeaders(), CORSMiddleware())
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "role": Role(c)})
	})
	r.GET("/admin", AuthMiddleware(tokens), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware_TokenSources(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer user-token") }, http.StatusOK},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic user-token") }, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "user-token"}) }, http.StatusOK},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAuthMiddleware_QueryTokenOnlyForWebsocket(t *testing.T) {
	r := newRouter()

	plain := httptest.NewRequest(http.MethodGet, "/me?token=user-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, plain)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	upgrade := httptest.NewRequest(http.MethodGet, "/me?token=user-token", nil)
	upgrade.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, upgrade)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter()
	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://dashboard.igire.rw")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.igire.rw", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
