package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/staff4dshire/staffdesk/database"
	"github.com/staff4dshire/staffdesk/models"
	"gorm.io/gorm"
)

// Identity is what the rest of the system needs to know about a user to scope
// and stamp conversations. It deliberately carries no profile data.
type Identity struct {
	UserID       uuid.UUID
	CompanyID    *uuid.UUID
	Role         string
	IsSuperadmin bool
}

// ResolveUser looks up the tenant identity for a user id.
func ResolveUser(userID uuid.UUID) (*Identity, error) {
	var user models.User
	err := database.DB.Select("id", "company_id", "role", "is_superadmin").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &Identity{
		UserID:       user.ID,
		CompanyID:    user.CompanyID,
		Role:         user.Role,
		IsSuperadmin: user.IsSuperadmin,
	}, nil
}
