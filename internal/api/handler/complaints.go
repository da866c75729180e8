package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"igire/backend/internal/api/middleware"
	"igire/backend/internal/complaint"
	"igire/backend/internal/config"
	"igire/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type complaintRequest struct {
	Description string   `json:"description" form:"description"`
	Category    string   `json:"category" form:"category"`
	District    string   `json:"district" form:"district"`
	Sector      string   `json:"sector" form:"sector"`
	Cell        string   `json:"cell" form:"cell"`
	Village     string   `json:"village" form:"village"`
	Latitude    *float64 `json:"latitude" form:"latitude"`
	Longitude   *float64 `json:"longitude" form:"longitude"`
	Language    string   `json:"language" form:"language"`
	Channel     string   `json:"channel" form:"channel"`
}

func (r complaintRequest) submission(userID string, channel models.Channel) complaint.Submission {
	sub := complaint.Submission{
		Description: r.Description,
		Category:    models.Category(strings.ToLower(strings.TrimSpace(r.Category))),
		District:    r.District,
		Sector:      r.Sector,
		Cell:        r.Cell,
		Village:     r.Village,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Language:    r.Language,
		Channel:     channel,
	}
	if userID != "" {
		sub.UserID = &userID
	}
	return sub
}

// ListComplaints applies query filters. Citizens only see their own complaints
// and institution staff only those assigned to their institution.
func (h *Handler) ListComplaints(c *gin.Context) {
	filter := models.ComplaintFilter{
		Status:           models.Status(c.Query("status")),
		Category:         models.Category(c.Query("category")),
		District:         c.Query("district"),
		Channel:          models.Channel(c.Query("channel")),
		AssignedAgencyID: c.Query("assigned"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			badRequest(c, "since must be an RFC3339 timestamp")
			return
		}
		filter.Since = t
	}

	switch middleware.Role(c) {
	case models.RoleUser:
		filter.UserID = middleware.UserID(c)
	case models.RoleInstitution:
		if inst := middleware.InstitutionID(c); inst != "" {
			filter.AssignedAgencyID = inst
		}
	}

	complaints, err := h.Store.ListComplaints(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// GetComplaint accepts an id or a tracking code.
func (h *Handler) GetComplaint(c *gin.Context) {
	key := c.Param("id")
	if strings.HasPrefix(strings.ToUpper(key), "IG-") {
		key = strings.ToUpper(key)
	}

	found, err := h.Store.GetComplaint(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if middleware.Role(c) == models.RoleUser &&
		(found.UserID == nil || *found.UserID != middleware.UserID(c)) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}
	c.JSON(http.StatusOK, found)
}

// CreateComplaint files a web complaint for the logged-in user.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid complaint payload")
		return
	}

	created, err := h.Complaints.Submit(c.Request.Context(), req.submission(middleware.UserID(c), models.ChannelWeb))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// CreateMediaComplaint accepts a multipart audio or video file plus the usual fields.
func (h *Handler) CreateMediaComplaint(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxMediaBytes)

	var req complaintRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid complaint payload")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "a media file is required")
		return
	}

	channel := models.ChannelVideo
	if models.Channel(req.Channel) == models.ChannelVoice {
		channel = models.ChannelVoice
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	created, err := h.Complaints.SubmitMedia(c.Request.Context(),
		req.submission(middleware.UserID(c), channel), fileHeader.Filename, file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateComplaint applies a partial status/assignment change. Any
// authenticated caller may update any complaint.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	var upd complaint.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "No valid fields to update")
		return
	}

	updated, err := h.Complaints.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.Store.DeleteComplaint(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted"})
}

func (h *Handler) ComplaintStats(c *gin.Context) {
	stats, err := h.Store.ComplaintStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type categorizeRequest struct {
	Description string `json:"description" binding:"required"`
}

// Categorize previews the category and routing for a draft description.
func (h *Handler) Categorize(c *gin.Context) {
	var req categorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		badRequest(c, "description is required")
		return
	}
	c.JSON(http.StatusOK, h.Categorizer.Categorize(c.Request.Context(), req.Description))
}
