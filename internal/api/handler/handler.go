// Package handler exposes the hub over HTTP: the JSON API used by the web
// dashboards, the gateway webhooks for USSD, SMS and voice, and the dashboard
// websocket.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"igire/backend/internal/categorize"
	"igire/backend/internal/complaint"
	"igire/backend/internal/config"
	"igire/backend/internal/dashboard"
	"igire/backend/internal/localization"
	"igire/backend/internal/models"
	"igire/backend/internal/rewards"
	"igire/backend/internal/storage"
	"igire/backend/internal/ussd"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ComplaintService interface {
	Submit(ctx context.Context, sub complaint.Submission) (*models.Complaint, error)
	SubmitMedia(ctx context.Context, sub complaint.Submission, filename string, file io.Reader) (*models.Complaint, error)
	SubmitRecording(ctx context.Context, sub complaint.Submission, mediaURL string) (*models.Complaint, error)
	Update(ctx context.Context, id string, upd complaint.Update) (*models.Complaint, error)
}

type Categorizer interface {
	Categorize(ctx context.Context, description string) categorize.Result
}

type RewardService interface {
	Catalog() []config.RewardOption
	RedeemCode(ctx context.Context, userID, code string) (*models.Redemption, error)
	Complete(ctx context.Context, redemptionID string) (*models.Redemption, error)
}

type InsightGenerator interface {
	Generate(ctx context.Context) ([]models.Prediction, error)
}

type USSDHandler interface {
	Handle(ctx context.Context, req ussd.Request) ussd.Response
}

type SMSSender interface {
	Send(ctx context.Context, to, text string) error
}

// CacheInvalidator drops cached institution lists after writes.
type CacheInvalidator interface {
	Invalidate()
}

// TokenIssuer signs bearer tokens for logged-in users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// Handler holds everything the routes need. Optional integrations may be nil.
type Handler struct {
	Store       storage.Storage
	Complaints  ComplaintService
	Categorizer Categorizer
	Rewards     RewardService
	Insights    InsightGenerator
	USSD        USSDHandler
	SMS         SMSSender
	Hub         *dashboard.Hub
	Tokens      TokenIssuer
	Texts       *localization.Localizer
	Cache       CacheInvalidator
	Logger      *zap.Logger

	// Production hides internal error details from API clients.
	Production bool
	// SecureCookies marks auth cookies Secure.
	SecureCookies bool
	// AllowedOrigins may open dashboard websockets from another host.
	AllowedOrigins []string

	// background runs work that must outlive the request; tests make it synchronous.
	background func(func())
}

func NewHandler(h Handler) *Handler {
	out := h
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.background == nil {
		out.background = func(f func()) { go f() }
	}
	return &out
}

// respondError maps package sentinel errors to HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, err.Error()

	switch {
	case errors.Is(err, complaint.ErrNoFields):
		status, msg = http.StatusBadRequest, "No valid fields to update"
	case errors.Is(err, storage.ErrInsufficientPoints):
		status, msg = http.StatusBadRequest, "Insufficient points"
	case errors.Is(err, complaint.ErrInvalid),
		errors.Is(err, complaint.ErrInvalidTransition),
		errors.Is(err, rewards.ErrUnknownOption):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if h.Production {
			msg = "Internal server error"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Health pings postgres and redis.
func (h *Handler) Health(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.Logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
