package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Prediction is an advisory insight for admins. It is never operational state.
type Prediction struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Issue       string         `gorm:"type:text;not null" json:"issue"`
	Category    Category       `gorm:"type:text;index" json:"category"`
	District    string         `json:"district,omitempty"`
	Probability int            `json:"probability"`
	Timeframe   string         `json:"timeframe"`
	Evidence    pq.StringArray `gorm:"type:text[]" json:"evidence"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
