package handler

import (
	"errors"
	"net/http"
	"strings"

	"igire/backend/internal/api/middleware"
	"igire/backend/internal/auth"
	"igire/backend/internal/models"
	"igire/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDCookie mirrors the token owner for the browser dashboard.
const UserIDCookie = "userId"

const minPasswordLength = 6

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	// Identifier is an email or a phone number; Email and Phone are accepted as aliases.
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required"`
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// Register creates a citizen account and logs it in.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and password are required")
		return
	}

	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: optional(strings.ToLower(req.Email)),
		Phone: optional(req.Phone),
		Role:  models.RoleUser,
	}
	if !user.HasContact() {
		badRequest(c, "email or phone is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		badRequest(c, "password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user.PasswordHash = hash

	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "an account with this email or phone already exists"})
			return
		}
		h.respondError(c, err)
		return
	}

	h.Logger.Info("user registered", zap.String("user_id", user.ID))
	h.startSession(c, http.StatusCreated, user)
}

// Login checks credentials and sets the session cookies.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "identifier and password are required")
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" {
		identifier = strings.TrimSpace(req.Phone)
	}
	if identifier == "" {
		badRequest(c, "identifier and password are required")
		return
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}

	user, err := h.Store.GetUserByIdentifier(c.Request.Context(), identifier)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.respondError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.startSession(c, http.StatusOK, user)
}

// Logout clears the session cookies. Tokens stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.SecureCookies, true)
	c.SetCookie(UserIDCookie, "", -1, "/", "", h.SecureCookies, false)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) startSession(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.Issue(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	maxAge := int(auth.TokenTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.SecureCookies, true)
	c.SetCookie(UserIDCookie, user.ID, maxAge, "/", "", h.SecureCookies, false)
	c.JSON(status, gin.H{"token": token, "user": user})
}
