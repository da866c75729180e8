package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is the closed set of service areas a complaint can belong to.
type Category string

const (
	CategoryWater       Category = "water"
	CategorySanitation  Category = "sanitation"
	CategoryRoads       Category = "roads"
	CategoryElectricity Category = "electricity"
	CategoryOther       Category = "other"
)

// Categories lists every category in menu order.
var Categories = []Category{CategoryWater, CategorySanitation, CategoryRoads, CategoryElectricity, CategoryOther}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes s and coerces anything unknown to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// Status is the lifecycle position of a complaint.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// Rank orders statuses along the lifecycle; unknown statuses rank -1.
func (s Status) Rank() int {
	switch s {
	case StatusSubmitted:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return s.Rank() >= 0 }

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
// Staying in place is allowed; a resolved complaint is never reopened.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}
	return next.Rank() >= s.Rank()
}

// Channel identifies how a complaint reached the hub.
type Channel string

const (
	ChannelWeb   Channel = "web"
	ChannelSMS   Channel = "sms"
	ChannelUSSD  Channel = "ussd"
	ChannelVoice Channel = "voice"
	ChannelVideo Channel = "video"
)

// Valid reports whether ch is a known intake channel.
func (ch Channel) Valid() bool {
	switch ch {
	case ChannelWeb, ChannelSMS, ChannelUSSD, ChannelVoice, ChannelVideo:
		return true
	}
	return false
}

// CategorySource records who decided the complaint category.
type CategorySource string

const (
	SourceUser    CategorySource = "user"
	SourceLLM     CategorySource = "llm"
	SourceKeyword CategorySource = "keyword"
)

// Complaint is a citizen-submitted service issue.
type Complaint struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	TrackingCode string  `gorm:"uniqueIndex;not null" json:"trackingCode"`
	UserID       *string `gorm:"index" json:"userId,omitempty"`
	// ReporterPhone is kept for phone channels so anonymous reporters can be notified.
	ReporterPhone string `gorm:"index" json:"reporterPhone,omitempty"`

	Description    string         `gorm:"type:text" json:"description"`
	Category       Category       `gorm:"type:text;index;not null" json:"category"`
	AICategory     Category       `gorm:"type:text" json:"aiCategory,omitempty"`
	AIConfidence   int            `json:"aiConfidence"`
	CategorySource CategorySource `gorm:"type:text" json:"categorySource,omitempty"`
	// SuggestedAgency is the routing suggestion; "Not Found" when nothing matched.
	SuggestedAgency string `json:"suggestedAgency,omitempty"`

	District  string   `gorm:"index" json:"district"`
	Sector    string   `json:"sector"`
	Cell      string   `json:"cell"`
	Village   string   `json:"village"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Status           Status  `gorm:"type:text;index;not null" json:"status"`
	AssignedAgencyID *string `gorm:"index" json:"assignedAgency,omitempty"`

	Channel       Channel           `gorm:"type:text;index;not null" json:"channel"`
	PointsAwarded int               `json:"pointsAwarded"`
	MediaURL      string            `json:"mediaUrl,omitempty"`
	Language      string            `json:"language,omitempty"`
	Meta          datatypes.JSONMap `gorm:"type:jsonb" json:"meta,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate fills the id, tracking code and initial status.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.TrackingCode == "" {
		c.TrackingCode = TrackingCodeFor(c.ID)
	}
	if c.Status == "" {
		c.Status = StatusSubmitted
	}
	return
}

// TrackingCodeFor derives the short code citizens type on USSD and SMS.
func TrackingCodeFor(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "IG-" + strings.ToUpper(compact)
}

// ComplaintFilter narrows complaint listings. Zero values mean "any".
type ComplaintFilter struct {
	Status           Status
	Category         Category
	District         string
	Channel          Channel
	UserID           string
	AssignedAgencyID string
	Since            time.Time
	Limit            int
}

// CountByKey is one aggregation bucket.
type CountByKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ComplaintStats is the server-side aggregation shown on admin dashboards.
type ComplaintStats struct {
	Total      int64        `json:"total"`
	ByStatus   []CountByKey `json:"byStatus"`
	ByCategory []CountByKey `json:"byCategory"`
	ByChannel  []CountByKey `json:"byChannel"`
	ByDistrict []CountByKey `json:"byDistrict"`
}
