package handler

import (
	"net/http"
	"strings"

	"igire/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type institutionRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Department     string `json:"department" binding:"required"`
	Role           string `json:"role"`
	TelegramChatID *int64 `json:"telegramChatId"`
}

func (r institutionRequest) apply(inst *models.Institution) bool {
	inst.Name = strings.TrimSpace(r.Name)
	inst.Email = strings.TrimSpace(r.Email)
	inst.Phone = strings.TrimSpace(r.Phone)
	inst.Department = strings.ToLower(strings.TrimSpace(r.Department))
	inst.TelegramChatID = r.TelegramChatID

	switch role := models.Role(r.Role); role {
	case "":
		if inst.Role == "" {
			inst.Role = models.RoleInstitution
		}
	case models.RoleAdmin, models.RoleInstitution:
		inst.Role = role
	default:
		return false
	}
	return inst.Name != "" && inst.Department != ""
}

func (h *Handler) ListInstitutions(c *gin.Context) {
	institutions, err := h.Store.ListInstitutions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, institutions)
}

func (h *Handler) GetInstitution(c *gin.Context) {
	inst, err := h.Store.GetInstitution(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

func (h *Handler) CreateInstitution(c *gin.Context) {
	var req institutionRequest
	inst := &models.Institution{}
	if err := c.ShouldBindJSON(&req); err != nil || !req.apply(inst) {
		badRequest(c, "name, department and a valid role are required")
		return
	}

	if err := h.Store.CreateInstitution(c.Request.Context(), inst); err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidateInstitutions()
	c.JSON(http.StatusCreated, inst)
}

func (h *Handler) UpdateInstitution(c *gin.Context) {
	inst, err := h.Store.GetInstitution(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req institutionRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.apply(inst) {
		badRequest(c, "name, department and a valid role are required")
		return
	}

	if err := h.Store.UpdateInstitution(c.Request.Context(), inst); err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidateInstitutions()
	c.JSON(http.StatusOK, inst)
}

func (h *Handler) DeleteInstitution(c *gin.Context) {
	if err := h.Store.DeleteInstitution(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidateInstitutions()
	c.JSON(http.StatusOK, gin.H{"message": "Institution deleted"})
}

func (h *Handler) invalidateInstitutions() {
	if h.Cache != nil {
		h.Cache.Invalidate()
	}
}
