package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string     `gorm:"size:100;not null" json:"first_name"`
	LastName     string     `gorm:"size:100;not null" json:"last_name"`
	Email        string     `gorm:"size:255;not null;unique" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"size:20;not null;default:'staff'" json:"role"`
	IsSuperadmin bool       `gorm:"default:false" json:"is_superadmin"`
	CompanyID    *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	PhotoURL     *string    `gorm:"size:500" json:"photo_url"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName is the "First Last" form used on message and roster payloads.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
