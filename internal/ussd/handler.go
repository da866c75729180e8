package ussd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"igire/backend/internal/complaint"
	"igire/backend/internal/config"
	"igire/backend/internal/localization"
	"igire/backend/internal/metrics"
	"igire/backend/internal/models"
	"igire/backend/internal/rewards"
	"igire/backend/internal/storage"

	"go.uber.org/zap"
)

// Request is the gateway callback payload.
type Request struct {
	SessionID   string `json:"sessionId" form:"sessionId"`
	ServiceCode string `json:"serviceCode" form:"serviceCode"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Text        string `json:"text" form:"text"`
	Language    string `json:"language" form:"language"`
}

type Submitter interface {
	Submit(ctx context.Context, sub complaint.Submission) (*models.Complaint, error)
}

type Lookup interface {
	GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}

type Redeemer interface {
	Redeem(ctx context.Context, userID string, option config.RewardOption) (*models.Redemption, error)
}

type step func(h *Handler, ctx context.Context, req Request, lang string, in []string) Response

// transitions is the whole dialog. A state missing here ends the session.
var transitions = map[State]step{
	{BranchRoot, 0}:   welcome,
	{BranchSubmit, 1}: askCategory,
	{BranchSubmit, 2}: askLocation,
	{BranchSubmit, 3}: askDescription,
	{BranchSubmit, 4}: submitComplaint,
	{BranchTrack, 1}:  askTrackingCode,
	{BranchTrack, 2}:  showStatus,
	{BranchPoints, 1}: showPoints,
	{BranchRedeem, 1}: chooseReward,
	{BranchRedeem, 2}: confirmReward,
	{BranchRedeem, 3}: redeemReward,
}

type Handler struct {
	submitter Submitter
	lookup    Lookup
	redeemer  Redeemer
	texts     *localization.Localizer
	lang      string
	logger    *zap.Logger
}

// NewHandler builds the dialog handler. lang is used when a request names no supported language.
func NewHandler(submitter Submitter, lookup Lookup, redeemer Redeemer, texts *localization.Localizer, lang string, logger *zap.Logger) *Handler {
	return &Handler{
		submitter: submitter,
		lookup:    lookup,
		redeemer:  redeemer,
		texts:     texts,
		lang:      lang,
		logger:    logger,
	}
}

// Handle answers one gateway request. Replaying a completed path repeats its side effects.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	lang := h.lang
	if req.Language != "" && h.texts.Supports(req.Language) {
		lang = req.Language
	}

	state, inputs, ok := Parse(req.Text)
	next, found := transitions[state]
	if !ok || !found {
		metrics.UssdRequests.WithLabelValues("invalid").Inc()
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}

	metrics.UssdRequests.WithLabelValues(state.Branch.String()).Inc()
	return next(h, ctx, req, lang, inputs)
}

func (h *Handler) failure(lang string, err error, req Request) Response {
	h.logger.Error("ussd request failed",
		zap.String("session_id", req.SessionID),
		zap.String("text", req.Text),
		zap.Error(err))
	return end(h.texts.GetString(lang, "ussd.error"))
}

func welcome(h *Handler, _ context.Context, _ Request, lang string, _ []string) Response {
	return con(h.texts.GetString(lang, "ussd.welcome"))
}

func askCategory(h *Handler, _ context.Context, _ Request, lang string, _ []string) Response {
	return con(h.texts.GetString(lang, "ussd.choose_category"))
}

func menuCategory(input string) (models.Category, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(models.Categories) {
		return "", false
	}
	return models.Categories[n-1], true
}

func askLocation(h *Handler, _ context.Context, _ Request, lang string, in []string) Response {
	if _, ok := menuCategory(in[1]); !ok {
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}
	return con(h.texts.GetString(lang, "ussd.enter_location"))
}

func askDescription(h *Handler, _ context.Context, _ Request, lang string, in []string) Response {
	if _, ok := menuCategory(in[1]); !ok || strings.TrimSpace(in[2]) == "" {
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}
	return con(h.texts.GetString(lang, "ussd.enter_description"))
}

func submitComplaint(h *Handler, ctx context.Context, req Request, lang string, in []string) Response {
	category, ok := menuCategory(in[1])
	location, description := strings.TrimSpace(in[2]), strings.TrimSpace(in[3])
	if !ok || location == "" || description == "" {
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}

	c, err := h.submitter.Submit(ctx, complaint.Submission{
		ReporterPhone: req.PhoneNumber,
		Description:   description,
		Category:      category,
		District:      location,
		Channel:       models.ChannelUSSD,
		Language:      lang,
		Meta: map[string]interface{}{
			"sessionId":   req.SessionID,
			"serviceCode": req.ServiceCode,
		},
	})
	if err != nil {
		return h.failure(lang, err, req)
	}

	if c.UserID == nil {
		return end(h.texts.Format(lang, "ussd.submitted_anonymous", c.TrackingCode))
	}
	return end(h.texts.Format(lang, "ussd.submitted", c.TrackingCode, c.PointsAwarded))
}

func askTrackingCode(h *Handler, _ context.Context, _ Request, lang string, _ []string) Response {
	return con(h.texts.GetString(lang, "ussd.enter_tracking"))
}

func showStatus(h *Handler, ctx context.Context, req Request, lang string, in []string) Response {
	code := strings.ToUpper(strings.TrimSpace(in[1]))
	if code == "" {
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}

	c, err := h.lookup.GetComplaint(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return end(h.texts.Format(lang, "ussd.track_not_found", code))
	}
	if err != nil {
		return h.failure(lang, err, req)
	}

	status := h.texts.GetString(lang, "status."+string(c.Status))
	return end(h.texts.Format(lang, "ussd.track_status", c.TrackingCode, status))
}

func (h *Handler) account(ctx context.Context, req Request, lang string) (*models.User, *Response) {
	u, err := h.lookup.GetUserByPhone(ctx, req.PhoneNumber)
	if errors.Is(err, storage.ErrNotFound) {
		r := end(h.texts.GetString(lang, "ussd.no_account"))
		return nil, &r
	}
	if err != nil {
		r := h.failure(lang, err, req)
		return nil, &r
	}
	return u, nil
}

func showPoints(h *Handler, ctx context.Context, req Request, lang string, _ []string) Response {
	u, stop := h.account(ctx, req, lang)
	if stop != nil {
		return *stop
	}
	return end(h.texts.Format(lang, "ussd.points", u.Points))
}

func rewardLabel(h *Handler, lang string, o config.RewardOption) string {
	return h.texts.GetString(lang, "reward."+o.Type)
}

func chooseReward(h *Handler, ctx context.Context, req Request, lang string, _ []string) Response {
	if _, stop := h.account(ctx, req, lang); stop != nil {
		return *stop
	}

	lines := make([]string, 0, len(config.RewardCatalog))
	for i, o := range config.RewardCatalog {
		lines = append(lines, h.texts.Format(lang, "ussd.reward_option", i+1, rewardLabel(h, lang, o), o.AmountRWF, o.CoinsRequired))
	}
	return con(h.texts.Format(lang, "ussd.choose_reward", strings.Join(lines, "\n")))
}

func selectedReward(input string) (config.RewardOption, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return config.RewardOption{}, false
	}
	return rewards.OptionAt(n)
}

func confirmReward(h *Handler, _ context.Context, _ Request, lang string, in []string) Response {
	o, ok := selectedReward(in[1])
	if !ok {
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}
	return con(h.texts.Format(lang, "ussd.confirm_redeem", rewardLabel(h, lang, o), o.AmountRWF, o.CoinsRequired))
}

func redeemReward(h *Handler, ctx context.Context, req Request, lang string, in []string) Response {
	o, ok := selectedReward(in[1])
	if !ok {
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}

	switch strings.TrimSpace(in[2]) {
	case "1":
	case "2":
		return end(h.texts.GetString(lang, "ussd.cancelled"))
	default:
		return end(h.texts.GetString(lang, "ussd.invalid_choice"))
	}

	u, stop := h.account(ctx, req, lang)
	if stop != nil {
		return *stop
	}

	if _, err := h.redeemer.Redeem(ctx, u.ID, o); err != nil {
		if errors.Is(err, storage.ErrInsufficientPoints) {
			return end(h.texts.Format(lang, "ussd.insufficient_points", o.CoinsRequired))
		}
		return h.failure(lang, fmt.Errorf("redeem %s: %w", o.Code, err), req)
	}
	return end(h.texts.Format(lang, "ussd.redeemed", rewardLabel(h, lang, o), o.AmountRWF, u.Points-o.CoinsRequired))
}
