package users

import (
	"time"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	"github.com/google/uuid"
)

// CreateUserDTO carries the fields required to provision a user.
type CreateUserDTO struct {
	LoginID      string
	Name         string
	Email        *string
	Phone        *string
	PasswordHash string
	Role         enums.UserRole
}

// ToModel maps the DTO onto a persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:           uuid.New(),
		LoginID:      d.LoginID,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		IsActive:     true,
	}
}

// UserView is the API-facing projection of a user.
type UserView struct {
	ID          uuid.UUID      `json:"id"`
	LoginID     string         `json:"login_id"`
	Name        string         `json:"name"`
	Email       *string        `json:"email,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewUserView projects a model into its API representation.
func NewUserView(user *models.User) UserView {
	return UserView{
		ID:          user.ID,
		LoginID:     user.LoginID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
