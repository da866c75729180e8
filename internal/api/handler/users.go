package handler

import (
	"net/http"
	"strings"

	"igire/backend/internal/api/middleware"
	"igire/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetProfile returns the caller with their redemption history.
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type profileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// UpdateProfile changes name, contact details or password. Points and role are not editable here.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid profile payload")
		return
	}

	user, err := h.Store.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			user.Name = name
		}
	}
	if req.Email != nil {
		user.Email = optional(strings.ToLower(*req.Email))
	}
	if req.Phone != nil {
		user.Phone = optional(*req.Phone)
	}
	if !user.HasContact() {
		badRequest(c, "email or phone is required")
		return
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			badRequest(c, "password must be at least 6 characters")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.respondError(c, err)
			return
		}
		user.PasswordHash = hash
	}

	if err := h.Store.UpdateUser(c.Request.Context(), user); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListRewards(c *gin.Context) {
	c.JSON(http.StatusOK, h.Rewards.Catalog())
}

type redeemRequest struct {
	// Reward is a catalog code such as "airtime-500" or a bare type such as "airtime".
	Reward string `json:"reward"`
	Type   string `json:"type"`
}

// Redeem exchanges the caller's points for a catalog reward.
func (h *Handler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "reward is required")
		return
	}
	code := req.Reward
	if code == "" {
		code = req.Type
	}
	if code == "" {
		badRequest(c, "reward is required")
		return
	}

	userID := middleware.UserID(c)
	redemption, err := h.Rewards.RedeemCode(c.Request.Context(), userID, code)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{"redemption": redemption}
	if user, err := h.Store.GetUserByID(c.Request.Context(), userID); err == nil {
		resp["points"] = user.Points
	}
	c.JSON(http.StatusCreated, resp)
}

// ListRedemptions lists every redemption, or one user's with ?userId=.
func (h *Handler) ListRedemptions(c *gin.Context) {
	redemptions, err := h.Store.ListRedemptions(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redemptions)
}

func (h *Handler) CompleteRedemption(c *gin.Context) {
	redemption, err := h.Rewards.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redemption)
}
