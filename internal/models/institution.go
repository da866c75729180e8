package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Institution is an agency that resolves complaints for one department.
type Institution struct {
	ID    string `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	// Department is the routing key; it holds a Category value.
	Department string `gorm:"index;not null" json:"department"`
	// Role is "admin" for hub staff, "institution" for agency staff.
	Role           Role   `gorm:"type:text;not null;default:institution" json:"role"`
	TelegramChatID *int64 `json:"telegramChatId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (i *Institution) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Role == "" {
		i.Role = RoleInstitution
	}
	return
}
