package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role separates citizens from staff accounts.
type Role string

const (
	RoleUser        Role = "user"
	RoleAdmin       Role = "admin"
	RoleInstitution Role = "institution"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleInstitution
}

// IsStaff reports whether the role belongs to an admin or institution account.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleInstitution
}

// User is a citizen or staff account. At least one of Email or Phone is set.
type User struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"not null" json:"name"`
	Email        *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone        *string `gorm:"uniqueIndex" json:"phone,omitempty"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Role         Role    `gorm:"type:text;not null;default:user" json:"role"`
	// Points is the Igire coin balance.
	Points        int     `gorm:"not null;default:0" json:"points"`
	InstitutionID *string `gorm:"index" json:"institutionId,omitempty"`

	Redemptions []Redemption `gorm:"constraint:OnDelete:CASCADE" json:"redemptions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate generates a UUID for the user if ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return
}

// HasContact reports whether the user can be reached by email or phone.
func (u *User) HasContact() bool {
	return (u.Email != nil && *u.Email != "") || (u.Phone != nil && *u.Phone != "")
}

// RedemptionStatus tracks fulfilment of a reward.
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionCompleted RedemptionStatus = "completed"
)

// Redemption is an append-only record of coins exchanged for a reward.
type Redemption struct {
	ID            string           `gorm:"primaryKey" json:"id"`
	UserID        string           `gorm:"index;not null" json:"userId"`
	Type          string           `gorm:"not null" json:"type"`
	AmountRWF     int              `json:"amountRwf"`
	CoinsRequired int              `json:"coinsRequired"`
	Status        RedemptionStatus `gorm:"type:text;not null" json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
}

// BeforeCreate generates an id and marks new redemptions pending.
func (r *Redemption) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = RedemptionPending
	}
	return
}
